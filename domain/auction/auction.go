package auction

import (
	"time"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/gem"
)

type Id string

func (id Id) String() string {
	return string(id)
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ToStatus(name string) (Status, error) {
	switch Status(name) {
	case StatusPending:
		return StatusPending, nil
	case StatusActive:
		return StatusActive, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	}
	return "", domain.ErrBadParamInput
}

// Trigger names the path that completed an auction
type Trigger string

const (
	TriggerBid      Trigger = "bid"
	TriggerSchedule Trigger = "schedule"
	TriggerAdmin    Trigger = "admin"
)

type Auction struct {
	Id              Id             `json:"id" bson:"id"`
	PriceStart      float64        `json:"priceStart" bson:"priceStart"`
	StartTime       time.Time      `json:"startTime" bson:"startTime"`
	EndTime         time.Time      `json:"endTime" bson:"endTime"`
	Status          Status         `json:"status" bson:"status"`
	CurrentPrice    float64        `json:"currentPrice" bson:"currentPrice"`
	HighestBidderId *domain.UserId `json:"highestBidderId" bson:"highestBidderId,omitempty"`
	Bids            []string       `json:"bids" bson:"bids"`
	GemId           gem.Id         `json:"gemId" bson:"gemId"`
	MerchantId      domain.UserId  `json:"merchantId" bson:"merchantId"`
	IsDeleted       bool           `json:"isDeleted" bson:"isDeleted"`
	DeletedAt       *time.Time     `json:"deletedAt" bson:"deletedAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// Ended reports whether the auction is past its end time
func (a *Auction) Ended(now time.Time) bool {
	return now.After(a.EndTime)
}

func (a *Auction) HasWinner() bool {
	return a.HighestBidderId != nil && !a.HighestBidderId.IsEmpty()
}

type Patchable struct {
	Status    *Status    `json:"status" bson:"status,omitempty"`
	EndTime   *time.Time `json:"endTime" bson:"endTime,omitempty"`
	IsDeleted *bool      `json:"isDeleted" bson:"isDeleted,omitempty"`
	DeletedAt *time.Time `json:"deletedAt" bson:"deletedAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt" bson:"updatedAt,omitempty"`
}

type FindAllOptions struct {
	Status     *Status
	GemId      *gem.Id
	MerchantId *domain.UserId
	IsDeleted  *bool
	EndTimeLT  *time.Time
	Offset     *int32
	Limit      *int32
	Sort       *string
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithStatus(status Status) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Status = &status
		return nil
	}
}

func WithGemId(gemId gem.Id) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.GemId = &gemId
		return nil
	}
}

func WithMerchantId(merchantId domain.UserId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.MerchantId = &merchantId
		return nil
	}
}

func WithIsDeleted(isDeleted bool) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.IsDeleted = &isDeleted
		return nil
	}
}

func WithEndTimeLT(t time.Time) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.EndTimeLT = &t
		return nil
	}
}

func WithPagination(offset, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithSort(sort string) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Sort = &sort
		return nil
	}
}

type Repo interface {
	FindOne(c ctx.Ctx, id Id) (*Auction, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Auction, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	Create(c ctx.Ctx, a *Auction) error
	Patch(c ctx.Ctx, id Id, p Patchable) error

	// AcceptBid applies a bid's effects to the auction with a single
	// conditional update: it matches only while the auction is active,
	// not deleted and currentPrice < amount. Returns domain.ErrBidTooLow
	// if the condition no longer holds.
	AcceptBid(c ctx.Ctx, id Id, bidId string, bidder domain.UserId, amount float64) error

	// CompleteIfActive flips status from active to completed with a
	// guarded update. Returns domain.ErrAlreadyCompleted if the auction
	// was not active anymore.
	CompleteIfActive(c ctx.Ctx, id Id) error
}

// Actor is the authenticated caller of a state transition
type Actor struct {
	UserId domain.UserId
	Role   domain.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// CanManage reports whether the actor may run merchant/admin transitions
// on the auction
func (a Actor) CanManage(au *Auction) bool {
	return a.IsAdmin() || a.UserId.Equals(au.MerchantId)
}

type CreatePayload struct {
	PriceStart float64       `json:"priceStart" validate:"required,gt=0"`
	EndTime    time.Time     `json:"endTime" validate:"required"`
	GemId      gem.Id        `json:"gemId" validate:"required"`
	MerchantId domain.UserId `json:"-"`
}

type UseCase interface {
	Create(c ctx.Ctx, payload CreatePayload) (*Auction, error)
	GetById(c ctx.Ctx, id Id) (*Auction, error)
	ListActive(c ctx.Ctx, offset, limit int32) ([]*Auction, int, error)
	ListByMerchant(c ctx.Ctx, merchantId domain.UserId) ([]*Auction, error)
	Cancel(c ctx.Ctx, id Id, actor Actor) (*Auction, error)
	Reactivate(c ctx.Ctx, id Id, actor Actor) (*Auction, error)
	Extend(c ctx.Ctx, id Id, endTime time.Time, actor Actor) (*Auction, error)
	// Complete runs the active->completed transition and settlement.
	// actor is nil when triggered by the scheduler or by a late bid.
	Complete(c ctx.Ctx, id Id, trigger Trigger, actor *Actor) (*Auction, error)
	SoftDelete(c ctx.Ctx, id Id, actor Actor) error
}

// Completer is the scheduler's view of the state machine
type Completer interface {
	Complete(c ctx.Ctx, id Id, trigger Trigger, actor *Actor) (*Auction, error)
}

// Scheduler owns the completion timers keyed by auction id
type Scheduler interface {
	Schedule(c ctx.Ctx, id Id, endTime time.Time)
	Cancel(c ctx.Ctx, id Id)
}

// Settlement is invoked inside the completion transaction
type Settlement interface {
	OnAuctionCompleted(c ctx.Ctx, a *Auction) error
}
