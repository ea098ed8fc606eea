package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/mspark/gemapi/base/ctx"
)

type JwtCustomClaims struct {
	UserId string `json:"data"` // name data for backward compatibility
	Role   string `json:"role"`
	jwt.StandardClaims
}

type AuthUsecase interface {
	SignToken(ctx ctx.Ctx, userId UserId) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (userId string, role string, err error)
}
