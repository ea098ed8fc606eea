package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/delivery"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/auction"
	"github.com/mspark/gemapi/domain/payment"
	authMiddleware "github.com/mspark/gemapi/stores/auth/delivery/http/middleware"
)

type paymentHandler struct {
	payment payment.UseCase
}

type listResp struct {
	Items []*payment.Payment `json:"items"`
	Total int                `json:"total"`
}

func New(e *echo.Echo, am *authMiddleware.AuthMiddleware, uc payment.UseCase) {
	handler := &paymentHandler{
		payment: uc,
	}

	// gateway webhooks authenticate with the per-order token, not a user
	e.POST("/payments/callback", handler.orderCallback)
	e.POST("/send/callback", handler.sendCallback)

	e.GET("/payments/my", handler.listMine, am.Auth(), am.IsBidder())
	e.GET("/auctions/:id/payments", handler.listByAuction, am.Auth(), am.IsMerchant())
	e.POST("/auctions/:id/payments/recreate", handler.recreateOrder, am.Auth(), am.IsAdmin())
	e.POST("/auctions/:id/payments/send", handler.createSend, am.Auth(), am.IsAdmin())
}

func (h *paymentHandler) orderCallback(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &payment.OrderCallbackPayload{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return c.JSON(http.StatusUnprocessableEntity, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if _, err := h.payment.OrderCallback(ctx, *p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *paymentHandler) sendCallback(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &payment.SendCallbackPayload{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return c.JSON(http.StatusUnprocessableEntity, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if _, err := h.payment.SendCallback(ctx, *p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *paymentHandler) recreateOrder(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p, err := h.payment.RecreateOrder(ctx, auction.Id(c.Param("id")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, p)
}

func (h *paymentHandler) createSend(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p, err := h.payment.CreateSend(ctx, auction.Id(c.Param("id")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, p)
}

func (h *paymentHandler) listByAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	offset, limit := delivery.GetPagination(c)

	payments, total, err := h.payment.ListByAuction(ctx, auction.Id(c.Param("id")), offset, limit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, listResp{payments, total})
}

func (h *paymentHandler) listMine(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	offset, limit := delivery.GetPagination(c)

	payments, total, err := h.payment.ListByBidder(ctx,
		c.Get("userId").(domain.UserId), c.QueryParam("status"), offset, limit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, listResp{payments, total})
}
