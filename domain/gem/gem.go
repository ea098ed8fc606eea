package gem

import (
	"time"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/domain"
)

type Id string

func (id Id) String() string {
	return string(id)
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
	StatusSold     Status = "sold"
)

type Gem struct {
	Id         Id            `json:"id" bson:"id"`
	Name       string        `json:"name" bson:"name"`
	Type       string        `json:"type" bson:"type"`
	Images     []string      `json:"images" bson:"images"`
	Status     Status        `json:"status" bson:"status"`
	Price      float64       `json:"price" bson:"price"`
	MerchantId domain.UserId `json:"merchantId" bson:"merchantId"`
	IsDeleted  bool          `json:"isDeleted" bson:"isDeleted"`
	CreatedAt  time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt" bson:"updatedAt"`
}

type Patchable struct {
	Status    *Status    `json:"status" bson:"status,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt" bson:"updatedAt,omitempty"`
}

type Repo interface {
	FindOne(c ctx.Ctx, id Id) (*Gem, error)
	Create(c ctx.Ctx, g *Gem) error
	Patch(c ctx.Ctx, id Id, p Patchable) error
}
