package coingate

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	bCtx "github.com/mspark/gemapi/base/ctx"
)

// Client wraps the gateway's REST api. Only the calls the settlement
// flow needs are exposed.
type Client interface {
	// CreateOrder opens a checkout order for collecting an auction payment
	CreateOrder(ctx bCtx.Ctx, req *CreateOrderRequest) (*Order, error)

	// GetOrder fetches the current state of an order by gateway id
	GetOrder(ctx bCtx.Ctx, id int64) (*Order, error)

	// CreatePayout sends funds out to a merchant
	CreatePayout(ctx bCtx.Ctx, req *CreatePayoutRequest) (*Payout, error)

	// GetExchangeRate returns the merchant rate from one currency to
	// another. Results are cached for up to an hour.
	GetExchangeRate(ctx bCtx.Ctx, from, to string) (decimal.Decimal, error)
}

type ClientCfg struct {
	HttpClient http.Client
	Timeout    time.Duration
	ApiUrl     string
	ApiKey     string
}

type CreateOrderRequest struct {
	Title           string `json:"title"`
	PriceAmount     string `json:"price_amount"`
	PriceCurrency   string `json:"price_currency"`
	ReceiveCurrency string `json:"receive_currency"`
	CallbackUrl     string `json:"callback_url"`
	SuccessUrl      string `json:"success_url,omitempty"`
	CancelUrl       string `json:"cancel_url,omitempty"`
	OrderId         string `json:"order_id"`
	Description     string `json:"description,omitempty"`
	PurchaserEmail  string `json:"purchaser_email,omitempty"`
}

type Order struct {
	Id              int64  `json:"id"`
	Status          string `json:"status"`
	Token           string `json:"token"`
	PaymentUrl      string `json:"payment_url"`
	PriceAmount     string `json:"price_amount"`
	PriceCurrency   string `json:"price_currency"`
	ReceiveCurrency string `json:"receive_currency"`
	OrderId         string `json:"order_id"`
	CreatedAt       string `json:"created_at"`
}

type CreatePayoutRequest struct {
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	ExternalId    string `json:"external_id"`
	Description   string `json:"description,omitempty"`
	CallbackUrl   string `json:"callback_url"`
	ReceiverEmail string `json:"receiver_email,omitempty"`
}

type Payout struct {
	Id              int64                  `json:"id"`
	Status          string                 `json:"status"`
	ExternalId      string                 `json:"external_id"`
	ActionsRequired []string               `json:"actions_required,omitempty"`
	Fees            map[string]interface{} `json:"fees,omitempty"`
}
