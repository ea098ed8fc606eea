package account

import (
	"time"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/domain"
)

type Account struct {
	Id        domain.UserId `json:"id" bson:"id"`
	Username  string        `json:"username" bson:"username"`
	Email     string        `json:"email" bson:"email"`
	Role      domain.Role   `json:"role" bson:"role"`
	IsDeleted bool          `json:"isDeleted" bson:"isDeleted"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

func (a *Account) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

type Repo interface {
	FindOne(c ctx.Ctx, id domain.UserId) (*Account, error)
	Create(c ctx.Ctx, a *Account) error
}
