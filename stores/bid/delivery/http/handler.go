package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/delivery"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/auction"
	"github.com/mspark/gemapi/domain/bid"
	authMiddleware "github.com/mspark/gemapi/stores/auth/delivery/http/middleware"
)

type bidHandler struct {
	bid bid.UseCase
}

type listResp struct {
	Items []*bid.Bid `json:"items"`
	Total int        `json:"total"`
}

func New(e *echo.Echo, am *authMiddleware.AuthMiddleware, uc bid.UseCase) {
	handler := &bidHandler{
		bid: uc,
	}

	e.POST("/auctions/:id/bids", handler.place, am.Auth(), am.IsBidder())
	e.GET("/bids/my", handler.listMine, am.Auth(), am.IsBidder())
}

func (h *bidHandler) place(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Amount float64 `json:"amount" validate:"required,gt=0"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return c.JSON(http.StatusUnprocessableEntity, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	bidder := c.Get("userId").(domain.UserId)
	res, err := h.bid.Place(ctx, auction.Id(c.Param("id")), bidder, p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *bidHandler) listMine(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	offset, limit := delivery.GetPagination(c)

	bids, total, err := h.bid.ListByBidder(ctx, c.Get("userId").(domain.UserId), offset, limit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, listResp{bids, total})
}
