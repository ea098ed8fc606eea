package bid

import (
	"time"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/auction"
)

type Bid struct {
	Id        string        `json:"id" bson:"id"`
	Bidder    domain.UserId `json:"bidder" bson:"bidder"`
	Amount    float64       `json:"amount" bson:"amount"`
	AuctionId auction.Id    `json:"auctionId" bson:"auctionId"`
	IsDeleted bool          `json:"isDeleted" bson:"isDeleted"`
	DeletedAt *time.Time    `json:"deletedAt" bson:"deletedAt,omitempty"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

type FindAllOptions struct {
	AuctionId *auction.Id
	Bidder    *domain.UserId
	IsDeleted *bool
	Offset    *int32
	Limit     *int32
	Sort      *string
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

func WithAuctionId(auctionId auction.Id) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.AuctionId = &auctionId
		return nil
	}
}

func WithBidder(bidder domain.UserId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Bidder = &bidder
		return nil
	}
}

func WithIsDeleted(isDeleted bool) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.IsDeleted = &isDeleted
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
	Create(c ctx.Ctx, b *Bid) error
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Bid, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
}

// PlaceResult is returned to the bidder on an accepted bid
type PlaceResult struct {
	Bid          *Bid    `json:"bid"`
	CurrentPrice float64 `json:"currentPrice"`
}

type UseCase interface {
	Place(c ctx.Ctx, auctionId auction.Id, bidder domain.UserId, amount float64) (*PlaceResult, error)
	ListByBidder(c ctx.Ctx, bidder domain.UserId, offset, limit int32) ([]*Bid, int, error)
}
