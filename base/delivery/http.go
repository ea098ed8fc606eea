package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = statusFromErr(err, status)
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}

func statusFromErr(err error, fallback int) int {
	switch {
	case errors.Is(err, domain.ErrNotFound) || errors.Is(err, query.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBadParamInput) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrAuctionEnded) ||
		errors.Is(err, domain.ErrBidTooLow):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamFailure):
		return http.StatusBadGateway
	}
	return fallback
}

const (
	defaultLimit = int32(20)
	maxLimit     = int32(100)
)

// GetPagination reads offset/limit query params with sane bounds
func GetPagination(c echo.Context) (offset, limit int32) {
	limit = defaultLimit

	if v, err := strconv.ParseInt(c.QueryParam("offset"), 10, 32); err == nil && v > 0 {
		offset = int32(v)
	}
	if v, err := strconv.ParseInt(c.QueryParam("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return offset, limit
}
