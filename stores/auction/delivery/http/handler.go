package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/delivery"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/auction"
	authMiddleware "github.com/mspark/gemapi/stores/auth/delivery/http/middleware"
)

type auctionHandler struct {
	auction auction.UseCase
}

type listResp struct {
	Items []*auction.Auction `json:"items"`
	Total int                `json:"total"`
}

func New(e *echo.Echo, am *authMiddleware.AuthMiddleware, uc auction.UseCase) {
	handler := &auctionHandler{
		auction: uc,
	}

	g := e.Group("/auctions")
	g.GET("", handler.listActive)
	g.GET("/my", handler.listMine, am.Auth(), am.IsMerchant())
	g.GET("/:id", handler.getById)
	g.POST("", handler.create, am.Auth(), am.IsMerchant())
	g.POST("/:id/cancel", handler.cancel, am.Auth(), am.IsMerchant())
	g.POST("/:id/reactivate", handler.reactivate, am.Auth(), am.IsMerchant())
	g.POST("/:id/extend", handler.extend, am.Auth(), am.IsMerchant())
	g.POST("/:id/complete", handler.complete, am.Auth(), am.IsAdmin())
	g.DELETE("/:id", handler.remove, am.Auth(), am.IsMerchant())
}

func actorFrom(c echo.Context) auction.Actor {
	return auction.Actor{
		UserId: c.Get("userId").(domain.UserId),
		Role:   c.Get("role").(domain.Role),
	}
}

func (h *auctionHandler) create(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &auction.CreatePayload{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return c.JSON(http.StatusUnprocessableEntity, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	p.MerchantId = c.Get("userId").(domain.UserId)

	if a, err := h.auction.Create(ctx, *p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, a)
	}
}

func (h *auctionHandler) listActive(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	offset, limit := delivery.GetPagination(c)

	auctions, total, err := h.auction.ListActive(ctx, offset, limit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, listResp{auctions, total})
}

func (h *auctionHandler) listMine(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	auctions, err := h.auction.ListByMerchant(ctx, c.Get("userId").(domain.UserId))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, auctions)
}

func (h *auctionHandler) getById(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	a, err := h.auction.GetById(ctx, auction.Id(c.Param("id")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, a)
}

func (h *auctionHandler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	a, err := h.auction.Cancel(ctx, auction.Id(c.Param("id")), actorFrom(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, a)
}

func (h *auctionHandler) reactivate(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	a, err := h.auction.Reactivate(ctx, auction.Id(c.Param("id")), actorFrom(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, a)
}

func (h *auctionHandler) extend(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		EndTime time.Time `json:"endTime" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return c.JSON(http.StatusUnprocessableEntity, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	a, err := h.auction.Extend(ctx, auction.Id(c.Param("id")), p.EndTime, actorFrom(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, a)
}

func (h *auctionHandler) complete(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	actor := actorFrom(c)
	a, err := h.auction.Complete(ctx, auction.Id(c.Param("id")), auction.TriggerAdmin, &actor)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, a)
}

func (h *auctionHandler) remove(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if err := h.auction.SoftDelete(ctx, auction.Id(c.Param("id")), actorFrom(c)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusNoContent, nil)
}
