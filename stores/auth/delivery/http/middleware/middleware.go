package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/delivery"
	"github.com/mspark/gemapi/domain"
)

type AuthMiddleware struct {
	auth domain.AuthUsecase
}

func New(auth domain.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

func (m *AuthMiddleware) Auth() echo.MiddlewareFunc {
	return middleware.KeyAuth(m.validateAuthToken)
}

func (m *AuthMiddleware) OptionalAuth() echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(c echo.Context) bool {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			return len(auth) == 0
		},
		Validator: m.validateAuthToken,
	})
}

func (m *AuthMiddleware) IsAdmin() echo.MiddlewareFunc {
	return m.hasRole(domain.RoleAdmin)
}

func (m *AuthMiddleware) IsMerchant() echo.MiddlewareFunc {
	return m.hasRole(domain.RoleMerchant, domain.RoleAdmin)
}

func (m *AuthMiddleware) IsBidder() echo.MiddlewareFunc {
	return m.hasRole(domain.RoleBidder, domain.RoleAdmin)
}

func (m *AuthMiddleware) hasRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := c.Get("role").(domain.Role)

			for _, r := range roles {
				if r == role {
					return next(c)
				}
			}

			return delivery.MakeJsonResp(c, http.StatusForbidden, domain.ErrForbidden)
		}
	}
}

func (m *AuthMiddleware) validateAuthToken(key string, c echo.Context) (bool, error) {
	ctx := c.Get("ctx").(ctx.Ctx)
	userId, role, err := m.auth.ParseToken(ctx, key)
	if err != nil {
		ctx.WithField("err", err).Error("auth.ParseToken failed")
		return false, err
	}

	r, err := domain.ToRole(role)
	if err != nil {
		ctx.WithField("role", role).Error("unknown role in token")
		return false, err
	}

	c.Set("userId", domain.UserId(userId))
	c.Set("role", r)
	return true, nil
}
