package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/delivery"
	"github.com/mspark/gemapi/domain/auction"
	"github.com/mspark/gemapi/service/scheduler"
	authMiddleware "github.com/mspark/gemapi/stores/auth/delivery/http/middleware"
)

// ops endpoints for fixing up completion timers after manual
// intervention
type schedulerHandler struct {
	scheduler scheduler.Service
}

func New(e *echo.Echo, am *authMiddleware.AuthMiddleware, svc scheduler.Service) {
	handler := &schedulerHandler{
		scheduler: svc,
	}

	g := e.Group("/scheduler", am.Auth(), am.IsAdmin())
	g.POST("/:id/reschedule", handler.reschedule)
	g.DELETE("/:id", handler.cancel)
}

func (h *schedulerHandler) reschedule(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if err := h.scheduler.Reschedule(ctx, auction.Id(c.Param("id"))); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *schedulerHandler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	h.scheduler.Cancel(ctx, auction.Id(c.Param("id")))
	return c.NoContent(http.StatusOK)
}
