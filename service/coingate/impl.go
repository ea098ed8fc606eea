package coingate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	bCtx "github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/log"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/keys"
	"github.com/mspark/gemapi/service/cache"
	"github.com/mspark/gemapi/service/cache/provider/primitive"
)

func NewClient(cfg *ClientCfg) Client {
	return &client{
		client:  cfg.HttpClient,
		timeout: cfg.Timeout,
		api:     cfg.ApiUrl,
		apiKey:  cfg.ApiKey,
		rateCache: cache.New(cache.ServiceConfig{
			Ttl:   time.Hour,
			Pfx:   "coingate_rate",
			Cache: primitive.NewPrimitive("coingate_rate", 1),
		}),
	}
}

type client struct {
	client    http.Client
	timeout   time.Duration
	api       string
	apiKey    string
	rateCache cache.Service
}

func (c *client) CreateOrder(ctx bCtx.Ctx, req *CreateOrderRequest) (*Order, error) {
	url := fmt.Sprintf("%s/orders", c.api)
	data, err := c.do(ctx, "POST", url, req)
	if err != nil {
		return nil, err
	}
	order := &Order{}
	if err := json.Unmarshal(data, order); err != nil {
		ctx.WithField("err", err).Error("json.Unmarshal failed")
		return nil, domain.ErrUpstreamFailure
	}
	return order, nil
}

func (c *client) GetOrder(ctx bCtx.Ctx, id int64) (*Order, error) {
	url := fmt.Sprintf("%s/orders/%d", c.api, id)
	data, err := c.do(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	order := &Order{}
	if err := json.Unmarshal(data, order); err != nil {
		ctx.WithField("err", err).Error("json.Unmarshal failed")
		return nil, domain.ErrUpstreamFailure
	}
	return order, nil
}

func (c *client) CreatePayout(ctx bCtx.Ctx, req *CreatePayoutRequest) (*Payout, error) {
	url := fmt.Sprintf("%s/send", c.api)
	data, err := c.do(ctx, "POST", url, req)
	if err != nil {
		return nil, err
	}
	payout := &Payout{}
	if err := json.Unmarshal(data, payout); err != nil {
		ctx.WithField("err", err).Error("json.Unmarshal failed")
		return nil, domain.ErrUpstreamFailure
	}
	return payout, nil
}

func (c *client) GetExchangeRate(ctx bCtx.Ctx, from, to string) (decimal.Decimal, error) {
	key := keys.RedisKey(keys.PfxExchangeRate, from, to)
	var rate decimal.Decimal
	if err := c.rateCache.GetByFunc(ctx, key, &rate, func() (interface{}, error) {
		if res, err := c.getExchangeRate(ctx, from, to); err != nil {
			return &decimal.Zero, err
		} else {
			return res, nil
		}
	}); err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}

func (c *client) getExchangeRate(ctx bCtx.Ctx, from, to string) (*decimal.Decimal, error) {
	url := fmt.Sprintf("%s/rates/merchant/%s/%s", c.api, from, to)
	data, err := c.do(ctx, "GET", url, nil)
	if err != nil {
		return &decimal.Zero, err
	}
	// the rates endpoint answers with a bare number
	rate, err := decimal.NewFromString(string(bytes.TrimSpace(data)))
	if err != nil {
		ctx.WithFields(log.Fields{
			"body": string(data),
			"err":  err,
		}).Error("parsing rate failed")
		return &decimal.Zero, domain.ErrUpstreamFailure
	}
	return &rate, nil
}

func (c *client) do(ctx bCtx.Ctx, method, url string, payload interface{}) ([]byte, error) {
	ctx, cancel := bCtx.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			ctx.WithField("err", err).Error("json.Marshal failed")
			return nil, err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("NewRequestWithContext failed")
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Token "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("client.Do failed")
		return nil, domain.ErrUpstreamFailure
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ctx.WithFields(log.Fields{
			"url":        url,
			"statusCode": resp.StatusCode,
		}).Error("unexpected status code")
		return nil, domain.ErrUpstreamFailure
	}

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("failed to read body")
		return nil, domain.ErrUpstreamFailure
	}
	return data, nil
}
