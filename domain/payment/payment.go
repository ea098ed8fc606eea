package payment

import (
	"time"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/auction"
)

type Type string

const (
	TypeOrder  Type = "order"
	TypeSend   Type = "send"
	TypeRefund Type = "refund"
)

type Status string

const (
	StatusDraft             Status = "draft"
	StatusInProgress        Status = "in_progress"
	StatusProcessing        Status = "processing"
	StatusNew               Status = "new"
	StatusPending           Status = "pending"
	StatusConfirming        Status = "confirming"
	StatusPaid              Status = "paid"
	StatusInvalid           Status = "invalid"
	StatusExpired           Status = "expired"
	StatusCanceled          Status = "canceled"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
)

// IsTerminalFailure reports whether a new order may be recreated over
// this payment
func (s Status) IsTerminalFailure() bool {
	switch s {
	case StatusExpired, StatusCanceled, StatusInvalid:
		return true
	}
	return false
}

// TerminalFailureStatuses lists the statuses IsTerminalFailure accepts,
// for building query filters
func TerminalFailureStatuses() []Status {
	return []Status{StatusExpired, StatusCanceled, StatusInvalid}
}

func (s Status) IsPaidOut() bool {
	switch s {
	case StatusPaid, StatusRefunded, StatusPartiallyRefunded:
		return true
	}
	return false
}

// StatusGroup is the coarse filter exposed on listing endpoints
func StatusGroup(name string) []Status {
	switch name {
	case "pending":
		return []Status{StatusNew, StatusPending}
	case "processing":
		return []Status{StatusConfirming}
	case "completed":
		return []Status{StatusPaid}
	case "failed":
		return []Status{StatusInvalid, StatusExpired, StatusCanceled}
	case "refunded":
		return []Status{StatusRefunded, StatusPartiallyRefunded}
	}
	return []Status{Status(name)}
}

// metadata keys; Metadata is an append-friendly audit trail of every
// gateway interaction
const (
	MetaGatewayToken     = "gatewayToken"
	MetaOriginalOrderId  = "originalOrderId"
	MetaIsRefundable     = "isRefundable"
	MetaOriginalResponse = "originalResponse"
	MetaFees             = "fees"
	MetaPaidAt           = "paidAt"
	MetaPayAmount        = "payAmount"
	MetaPayCurrency      = "payCurrency"
	MetaReceiveAmount    = "receiveAmount"
	MetaPreviousAttempts = "previousAttempts"
	MetaExchangeRate     = "exchangeRate"
)

type Payment struct {
	Id                 string                 `json:"id" bson:"id"`
	Amount             string                 `json:"amount" bson:"amount"`
	PriceCurrency      string                 `json:"priceCurrency" bson:"priceCurrency"`
	ReceiveCurrency    string                 `json:"receiveCurrency" bson:"receiveCurrency"`
	Description        string                 `json:"description" bson:"description"`
	Type               Type                   `json:"paymentType" bson:"paymentType"`
	Status             Status                 `json:"paymentStatus" bson:"paymentStatus"`
	TransactionDate    time.Time              `json:"transactionDate" bson:"transactionDate"`
	Bidder             domain.UserId          `json:"bidder" bson:"bidder,omitempty"`
	Merchant           domain.UserId          `json:"merchant" bson:"merchant,omitempty"`
	AuctionId          auction.Id             `json:"auction" bson:"auction"`
	GatewayId          int64                  `json:"gatewayId" bson:"gatewayId"`
	GatewayPaymentLink string                 `json:"gatewayPaymentLink" bson:"gatewayPaymentLink,omitempty"`
	Metadata           map[string]interface{} `json:"metadata" bson:"metadata"`
	CreatedAt          time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// Token returns the gateway callback token recorded at order creation
func (p *Payment) Token() string {
	if p.Metadata == nil {
		return ""
	}
	if t, ok := p.Metadata[MetaGatewayToken].(string); ok {
		return t
	}
	return ""
}

type Patchable struct {
	Amount             *string                `bson:"amount,omitempty"`
	PriceCurrency      *string                `bson:"priceCurrency,omitempty"`
	ReceiveCurrency    *string                `bson:"receiveCurrency,omitempty"`
	Status             *Status                `bson:"paymentStatus,omitempty"`
	GatewayId          *int64                 `bson:"gatewayId,omitempty"`
	GatewayPaymentLink *string                `bson:"gatewayPaymentLink,omitempty"`
	Metadata           map[string]interface{} `bson:"metadata,omitempty"`
	UpdatedAt          *time.Time             `bson:"updatedAt,omitempty"`
}

type FindAllOptions struct {
	AuctionId *auction.Id
	Type      *Type
	Bidder    *domain.UserId
	Merchant  *domain.UserId
	Statuses  []Status
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

func WithType(t Type) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Type = &t
		return nil
	}
}

func WithBidder(bidder domain.UserId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Bidder = &bidder
		return nil
	}
}

func WithMerchant(merchant domain.UserId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Merchant = &merchant
		return nil
	}
}

func WithStatuses(statuses ...Status) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Statuses = statuses
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
	Create(c ctx.Ctx, p *Payment) error
	FindOne(c ctx.Ctx, id string) (*Payment, error)
	FindByGatewayId(c ctx.Ctx, gatewayId int64) (*Payment, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Payment, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	Patch(c ctx.Ctx, id string, p Patchable) error

	// ReserveSend inserts p only while the auction has no other send
	// payment that is still open. Returns ErrConflict when one exists.
	ReserveSend(c ctx.Ctx, p *Payment) error
	// MarkRecreating moves a dead order back to draft. Returns
	// ErrConflict unless the order is in a terminal failure status.
	MarkRecreating(c ctx.Ctx, id string) error
}

// OrderCallbackPayload is the gateway's order webhook body
type OrderCallbackPayload struct {
	Id            int64         `json:"id" validate:"required"`
	Status        Status        `json:"status" validate:"required"`
	Token         string        `json:"token" validate:"required"`
	IsRefundable  bool          `json:"is_refundable"`
	Fees          []interface{} `json:"fees"`
	PaidAt        *string       `json:"paid_at"`
	PayAmount     *string       `json:"pay_amount"`
	PayCurrency   *string       `json:"pay_currency"`
	ReceiveAmount *string       `json:"receive_amount"`
}

// SendCallbackPayload is the gateway's payout webhook body
type SendCallbackPayload struct {
	Id         int64  `json:"id" validate:"required"`
	Status     Status `json:"status" validate:"required"`
	ExternalId string `json:"external_id"`
}

type UseCase interface {
	auction.Settlement

	OrderCallback(c ctx.Ctx, payload OrderCallbackPayload) (*Payment, error)
	SendCallback(c ctx.Ctx, payload SendCallbackPayload) (*Payment, error)
	RecreateOrder(c ctx.Ctx, auctionId auction.Id) (*Payment, error)
	CreateSend(c ctx.Ctx, auctionId auction.Id) (*Payment, error)
	ListByAuction(c ctx.Ctx, auctionId auction.Id, offset, limit int32) ([]*Payment, int, error)
	ListByBidder(c ctx.Ctx, bidder domain.UserId, statusGroup string, offset, limit int32) ([]*Payment, int, error)
}
