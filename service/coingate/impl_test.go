package coingate

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	bCtx "github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/domain"
)

func newTestClient(url string) Client {
	return NewClient(&ClientCfg{
		HttpClient: http.Client{},
		Timeout:    10 * time.Second,
		ApiUrl:     url,
		ApiKey:     "test-key",
	})
}

func Test_CreateOrder(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("POST", r.Method)
		req.Equal("/orders", r.URL.Path)
		req.Equal("Token test-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":12345,"status":"new","token":"tkn-abc","payment_url":"https://pay.example/12345","price_amount":"1500.00","price_currency":"USD","receive_currency":"BTC"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	order, err := c.CreateOrder(bCtx.Background(), &CreateOrderRequest{
		Title:           "Auction Payment for Ruby",
		PriceAmount:     "1500.00",
		PriceCurrency:   "USD",
		ReceiveCurrency: "BTC",
		OrderId:         "auction-1",
	})
	req.NoError(err)
	req.Equal(int64(12345), order.Id)
	req.Equal("new", order.Status)
	req.Equal("tkn-abc", order.Token)
	req.Equal("https://pay.example/12345", order.PaymentUrl)
}

func Test_CreateOrder_UpstreamError(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CreateOrder(bCtx.Background(), &CreateOrderRequest{})
	req.ErrorIs(err, domain.ErrUpstreamFailure)
}

func Test_CreatePayout(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("POST", r.Method)
		req.Equal("/send", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":777,"status":"processing","external_id":"auction-1"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	payout, err := c.CreatePayout(bCtx.Background(), &CreatePayoutRequest{
		Amount:     "1395.00",
		Currency:   "BTC",
		ExternalId: "auction-1",
	})
	req.NoError(err)
	req.Equal(int64(777), payout.Id)
	req.Equal("processing", payout.Status)
}

func Test_GetExchangeRate_Cached(t *testing.T) {
	req := require.New(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		req.Equal("/rates/merchant/USD/BTC", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("0.0000152"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx := bCtx.Background()

	rate, err := c.GetExchangeRate(ctx, "USD", "BTC")
	req.NoError(err)
	req.True(rate.Equal(decimal.RequireFromString("0.0000152")))

	// second lookup hits the cache
	rate, err = c.GetExchangeRate(ctx, "USD", "BTC")
	req.NoError(err)
	req.True(rate.Equal(decimal.RequireFromString("0.0000152")))
	req.Equal(int32(1), atomic.LoadInt32(&calls))
}
