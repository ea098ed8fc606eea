package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/log"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/account"
	"github.com/mspark/gemapi/domain/auction"
	"github.com/mspark/gemapi/domain/gem"
	"github.com/mspark/gemapi/domain/mspark"
	"github.com/mspark/gemapi/domain/payment"
	"github.com/mspark/gemapi/service/coingate"
	"github.com/mspark/gemapi/service/mailer"
)

type PaymentUseCaseCfg struct {
	PaymentRepo payment.Repo
	AuctionRepo auction.Repo
	AccountRepo account.Repo
	GemRepo     gem.Repo
	MsparkRepo  mspark.Repo
	Gateway     coingate.Client
	Mailer      mailer.Mailer

	// ApiUrl is the public base url the gateway posts webhooks to
	ApiUrl    string
	ClientUrl string
	// PriceCurrency denominates orders and payout math, ex: "USD"
	PriceCurrency string
	// ReceiveCurrency is what order proceeds settle into, ex: "BTC"
	ReceiveCurrency string
}

type impl struct {
	paymentRepo payment.Repo
	auctionRepo auction.Repo
	accountRepo account.Repo
	gemRepo     gem.Repo
	msparkRepo  mspark.Repo
	gateway     coingate.Client
	mailer      mailer.Mailer

	apiUrl          string
	clientUrl       string
	priceCurrency   string
	receiveCurrency string
}

func New(cfg *PaymentUseCaseCfg) payment.UseCase {
	return &impl{
		paymentRepo:     cfg.PaymentRepo,
		auctionRepo:     cfg.AuctionRepo,
		accountRepo:     cfg.AccountRepo,
		gemRepo:         cfg.GemRepo,
		msparkRepo:      cfg.MsparkRepo,
		gateway:         cfg.Gateway,
		mailer:          cfg.Mailer,
		apiUrl:          cfg.ApiUrl,
		clientUrl:       cfg.ClientUrl,
		priceCurrency:   cfg.PriceCurrency,
		receiveCurrency: cfg.ReceiveCurrency,
	}
}

// OnAuctionCompleted runs inside the completion transaction. A gateway
// failure aborts the whole transition so the auction stays active and
// the scheduler retries.
func (im *impl) OnAuctionCompleted(c ctx.Ctx, a *auction.Auction) error {
	g, err := im.gemRepo.FindOne(c, a.GemId)
	if err != nil {
		return err
	}

	sold := gem.StatusSold
	now := time.Now()
	if err := im.gemRepo.Patch(c, g.Id, gem.Patchable{
		Status:    &sold,
		UpdatedAt: &now,
	}); err != nil {
		return err
	}

	merchant, err := im.accountRepo.FindOne(c, a.MerchantId)
	if err != nil {
		return err
	}

	auctionMail := im.auctionMail(a, g)

	if !a.HasWinner() {
		if msg, err := mailer.MerchantCompletedMail(merchant.Email, auctionMail, ""); err == nil {
			im.mailer.SendAsync(c, msg)
		}
		return nil
	}

	winner, err := im.accountRepo.FindOne(c, *a.HighestBidderId)
	if err != nil {
		return err
	}

	p := &payment.Payment{
		Id:              uuid.New().String(),
		Amount:          decimal.NewFromFloat(a.CurrentPrice).StringFixed(2),
		PriceCurrency:   im.priceCurrency,
		ReceiveCurrency: im.receiveCurrency,
		Description:     "Auction payment for " + g.Name,
		Type:            payment.TypeOrder,
		Bidder:          winner.Id,
		Merchant:        merchant.Id,
		AuctionId:       a.Id,
		TransactionDate: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	order, err := im.gateway.CreateOrder(c, &coingate.CreateOrderRequest{
		Title:           "Auction " + a.Id.String(),
		PriceAmount:     p.Amount,
		PriceCurrency:   im.priceCurrency,
		ReceiveCurrency: im.receiveCurrency,
		CallbackUrl:     im.apiUrl + "/payments/callback",
		SuccessUrl:      im.clientUrl + "/payment-success",
		CancelUrl:       im.clientUrl + "/payment-cancel",
		OrderId:         p.Id,
		Description:     p.Description,
		PurchaserEmail:  winner.Email,
	})
	if err != nil {
		c.WithFields(log.Fields{
			"auctionId": a.Id,
			"err":       err,
		}).Error("gateway.CreateOrder failed")
		return err
	}

	p.Status = payment.Status(order.Status)
	p.GatewayId = order.Id
	p.GatewayPaymentLink = order.PaymentUrl
	p.Metadata = map[string]interface{}{
		payment.MetaGatewayToken:     order.Token,
		payment.MetaOriginalResponse: order,
	}

	if err := im.paymentRepo.Create(c, p); err != nil {
		return err
	}

	if msg, err := mailer.WinnerPaymentLinkMail(winner.Email, auctionMail, order.PaymentUrl); err == nil {
		im.mailer.SendAsync(c, msg)
	}
	if msg, err := mailer.MerchantCompletedMail(merchant.Email, auctionMail, winner.Username); err == nil {
		im.mailer.SendAsync(c, msg)
	}
	return nil
}

func (im *impl) OrderCallback(c ctx.Ctx, payload payment.OrderCallbackPayload) (*payment.Payment, error) {
	p, err := im.paymentRepo.FindByGatewayId(c, payload.Id)
	if err != nil {
		return nil, err
	}
	if p.Token() != payload.Token {
		c.WithField("gatewayId", payload.Id).Warn("order callback token mismatch")
		return nil, domain.ErrForbidden
	}

	meta := copyMetadata(p.Metadata)
	meta[payment.MetaIsRefundable] = payload.IsRefundable
	if len(payload.Fees) > 0 {
		meta[payment.MetaFees] = payload.Fees
	}
	if payload.PaidAt != nil {
		meta[payment.MetaPaidAt] = *payload.PaidAt
	}
	if payload.PayAmount != nil {
		meta[payment.MetaPayAmount] = *payload.PayAmount
	}
	if payload.PayCurrency != nil {
		meta[payment.MetaPayCurrency] = *payload.PayCurrency
	}
	if payload.ReceiveAmount != nil {
		meta[payment.MetaReceiveAmount] = *payload.ReceiveAmount
	}

	now := time.Now()
	if err := im.paymentRepo.Patch(c, p.Id, payment.Patchable{
		Status:    &payload.Status,
		Metadata:  meta,
		UpdatedAt: &now,
	}); err != nil {
		return nil, err
	}

	p.Status = payload.Status
	p.Metadata = meta
	p.UpdatedAt = now

	if payload.Status == payment.StatusPaid || payload.Status.IsTerminalFailure() {
		im.notifyPaymentStatus(c, p)
	}
	return p, nil
}

func (im *impl) SendCallback(c ctx.Ctx, payload payment.SendCallbackPayload) (*payment.Payment, error) {
	p, err := im.paymentRepo.FindByGatewayId(c, payload.Id)
	if err != nil {
		return nil, err
	}
	if p.Type != payment.TypeSend {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	if err := im.paymentRepo.Patch(c, p.Id, payment.Patchable{
		Status:    &payload.Status,
		UpdatedAt: &now,
	}); err != nil {
		return nil, err
	}

	p.Status = payload.Status
	p.UpdatedAt = now
	c.WithFields(log.Fields{
		"paymentId": p.Id,
		"status":    payload.Status,
	}).Info("payout status updated")
	return p, nil
}

// RecreateOrder opens a fresh gateway order over a dead one. The payment
// record is updated in place and the retired gateway ids stay in the
// metadata audit trail.
func (im *impl) RecreateOrder(c ctx.Ctx, auctionId auction.Id) (*payment.Payment, error) {
	p, err := im.findOrderPayment(c, auctionId)
	if err != nil {
		return nil, err
	}
	if !p.Status.IsTerminalFailure() {
		return nil, domain.ErrConflict
	}

	a, err := im.auctionRepo.FindOne(c, auctionId)
	if err != nil {
		return nil, err
	}
	g, err := im.gemRepo.FindOne(c, a.GemId)
	if err != nil {
		return nil, err
	}
	winner, err := im.accountRepo.FindOne(c, p.Bidder)
	if err != nil {
		return nil, err
	}

	// only one recreate may hold the order while it talks to the
	// gateway, a concurrent recreate gets ErrConflict here
	if err := im.paymentRepo.MarkRecreating(c, p.Id); err != nil {
		return nil, err
	}

	order, err := im.gateway.CreateOrder(c, &coingate.CreateOrderRequest{
		Title:           "Auction " + a.Id.String(),
		PriceAmount:     p.Amount,
		PriceCurrency:   p.PriceCurrency,
		ReceiveCurrency: p.ReceiveCurrency,
		CallbackUrl:     im.apiUrl + "/payments/callback",
		SuccessUrl:      im.clientUrl + "/payment-success",
		CancelUrl:       im.clientUrl + "/payment-cancel",
		OrderId:         p.Id,
		Description:     p.Description,
		PurchaserEmail:  winner.Email,
	})
	if err != nil {
		c.WithFields(log.Fields{
			"auctionId": auctionId,
			"err":       err,
		}).Error("gateway.CreateOrder failed")
		im.restoreOrderStatus(c, p)
		return nil, err
	}

	meta := copyMetadata(p.Metadata)
	attempt := map[string]interface{}{
		"gatewayId":  p.GatewayId,
		"status":     p.Status,
		"token":      p.Token(),
		"paymentUrl": p.GatewayPaymentLink,
		"retiredAt":  time.Now(),
	}
	attempts, _ := meta[payment.MetaPreviousAttempts].([]interface{})
	meta[payment.MetaPreviousAttempts] = append(attempts, attempt)
	meta[payment.MetaGatewayToken] = order.Token
	meta[payment.MetaOriginalResponse] = order

	now := time.Now()
	status := payment.Status(order.Status)
	if err := im.paymentRepo.Patch(c, p.Id, payment.Patchable{
		Status:             &status,
		GatewayId:          &order.Id,
		GatewayPaymentLink: &order.PaymentUrl,
		Metadata:           meta,
		UpdatedAt:          &now,
	}); err != nil {
		return nil, err
	}

	p.Status = status
	p.GatewayId = order.Id
	p.GatewayPaymentLink = order.PaymentUrl
	p.Metadata = meta
	p.UpdatedAt = now

	if msg, err := mailer.WinnerPaymentLinkMail(winner.Email, im.auctionMail(a, g), order.PaymentUrl); err == nil {
		im.mailer.SendAsync(c, msg)
	}
	return p, nil
}

// CreateSend pays the merchant out of a settled auction. Payout amount
// is currentPrice less the platform and verification fees, converted to
// the payout currency at the cached merchant rate.
func (im *impl) CreateSend(c ctx.Ctx, auctionId auction.Id) (*payment.Payment, error) {
	a, err := im.auctionRepo.FindOne(c, auctionId)
	if err != nil {
		return nil, err
	}
	if a.IsDeleted {
		return nil, domain.ErrNotFound
	}
	if a.Status != auction.StatusCompleted {
		return nil, domain.ErrInvalidTransition
	}

	paidCnt, err := im.paymentRepo.Count(c,
		payment.WithAuctionId(auctionId),
		payment.WithType(payment.TypeOrder),
		payment.WithStatuses(payment.StatusPaid),
	)
	if err != nil {
		return nil, err
	}
	if paidCnt == 0 {
		return nil, domain.ErrBadParamInput
	}

	m, err := im.msparkRepo.FindPrimary(c)
	if err != nil {
		return nil, err
	}
	platformFee, verificationFee, err := m.FeeFractions()
	if err != nil {
		return nil, err
	}

	merchant, err := im.accountRepo.FindOne(c, a.MerchantId)
	if err != nil {
		return nil, err
	}

	rate, err := im.gateway.GetExchangeRate(c, im.priceCurrency, m.PayoutCurrency)
	if err != nil {
		return nil, err
	}

	gross := decimal.NewFromFloat(a.CurrentPrice)
	net := gross.Mul(decimal.NewFromInt(1).Sub(platformFee).Sub(verificationFee))
	amount := net.Mul(rate)

	now := time.Now()
	p := &payment.Payment{
		Id:              uuid.New().String(),
		Amount:          amount.StringFixed(8),
		PriceCurrency:   im.priceCurrency,
		ReceiveCurrency: m.PayoutCurrency,
		Description:     "Merchant payout for auction " + a.Id.String(),
		Type:            payment.TypeSend,
		Status:          payment.StatusDraft,
		Bidder:          "",
		Merchant:        merchant.Id,
		AuctionId:       a.Id,
		TransactionDate: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// claim the payout slot before touching the gateway, losing
	// reservations never send money
	if err := im.paymentRepo.ReserveSend(c, p); err != nil {
		return nil, err
	}

	payout, err := im.gateway.CreatePayout(c, &coingate.CreatePayoutRequest{
		Amount:        p.Amount,
		Currency:      m.PayoutCurrency,
		ExternalId:    p.Id,
		Description:   p.Description,
		CallbackUrl:   im.apiUrl + "/send/callback",
		ReceiverEmail: merchant.Email,
	})
	if err != nil {
		c.WithFields(log.Fields{
			"auctionId": auctionId,
			"err":       err,
		}).Error("gateway.CreatePayout failed")
		im.releaseSend(c, p.Id)
		return nil, err
	}

	p.Status = payment.Status(payout.Status)
	p.GatewayId = payout.Id
	p.Metadata = map[string]interface{}{
		payment.MetaExchangeRate:     rate.String(),
		payment.MetaOriginalResponse: payout,
	}
	if len(payout.Fees) > 0 {
		p.Metadata[payment.MetaFees] = payout.Fees
	}

	p.UpdatedAt = time.Now()
	if err := im.paymentRepo.Patch(c, p.Id, payment.Patchable{
		Status:    &p.Status,
		GatewayId: &p.GatewayId,
		Metadata:  p.Metadata,
		UpdatedAt: &p.UpdatedAt,
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// restoreOrderStatus undoes MarkRecreating after a gateway failure
func (im *impl) restoreOrderStatus(c ctx.Ctx, p *payment.Payment) {
	now := time.Now()
	if err := im.paymentRepo.Patch(c, p.Id, payment.Patchable{
		Status:    &p.Status,
		UpdatedAt: &now,
	}); err != nil {
		c.WithFields(log.Fields{
			"paymentId": p.Id,
			"err":       err,
		}).Error("restore order status failed")
	}
}

// releaseSend fails the draft so a later CreateSend can reserve again
func (im *impl) releaseSend(c ctx.Ctx, id string) {
	invalid := payment.StatusInvalid
	now := time.Now()
	if err := im.paymentRepo.Patch(c, id, payment.Patchable{
		Status:    &invalid,
		UpdatedAt: &now,
	}); err != nil {
		c.WithFields(log.Fields{
			"paymentId": id,
			"err":       err,
		}).Error("release send draft failed")
	}
}

func (im *impl) ListByAuction(c ctx.Ctx, auctionId auction.Id, offset, limit int32) ([]*payment.Payment, int, error) {
	res, err := im.paymentRepo.FindAll(c,
		payment.WithAuctionId(auctionId),
		payment.WithPagination(offset, limit),
	)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := im.paymentRepo.Count(c, payment.WithAuctionId(auctionId))
	if err != nil {
		return nil, 0, err
	}
	return res, cnt, nil
}

func (im *impl) ListByBidder(c ctx.Ctx, bidder domain.UserId, statusGroup string, offset, limit int32) ([]*payment.Payment, int, error) {
	filters := []payment.FindAllOptionsFunc{payment.WithBidder(bidder)}
	if statusGroup != "" {
		filters = append(filters, payment.WithStatuses(payment.StatusGroup(statusGroup)...))
	}

	res, err := im.paymentRepo.FindAll(c, append(filters,
		payment.WithPagination(offset, limit),
	)...)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := im.paymentRepo.Count(c, filters...)
	if err != nil {
		return nil, 0, err
	}
	return res, cnt, nil
}

func (im *impl) findOrderPayment(c ctx.Ctx, auctionId auction.Id) (*payment.Payment, error) {
	res, err := im.paymentRepo.FindAll(c,
		payment.WithAuctionId(auctionId),
		payment.WithType(payment.TypeOrder),
	)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, domain.ErrNotFound
	}
	return res[0], nil
}

func (im *impl) notifyPaymentStatus(c ctx.Ctx, p *payment.Payment) {
	acc, err := im.accountRepo.FindOne(c, p.Bidder)
	if err != nil {
		c.WithFields(log.Fields{
			"bidder": p.Bidder,
			"err":    err,
		}).Error("accountRepo.FindOne failed")
		return
	}

	gemName := ""
	if a, err := im.auctionRepo.FindOne(c, p.AuctionId); err == nil {
		if g, err := im.gemRepo.FindOne(c, a.GemId); err == nil {
			gemName = g.Name
		}
	}

	msg, err := mailer.PaymentStatusMail(acc.Email, gemName, p.Amount, string(p.Status))
	if err != nil {
		c.WithField("err", err).Error("PaymentStatusMail failed")
		return
	}
	im.mailer.SendAsync(c, msg)
}

func (im *impl) auctionMail(a *auction.Auction, g *gem.Gem) mailer.AuctionMail {
	return mailer.AuctionMail{
		AuctionId:    a.Id.String(),
		GemId:        g.Id.String(),
		GemName:      g.Name,
		GemType:      g.Type,
		CurrentPrice: decimal.NewFromFloat(a.CurrentPrice).StringFixed(2),
		EndTime:      a.EndTime,
		AuctionUrl:   im.clientUrl + "/auction-detail/" + a.Id.String(),
	}
}

func copyMetadata(src map[string]interface{}) map[string]interface{} {
	dst := map[string]interface{}{}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
