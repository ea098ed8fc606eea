package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/account"
	mAccount "github.com/mspark/gemapi/domain/account/mocks"
	"github.com/mspark/gemapi/domain/auction"
	mAuction "github.com/mspark/gemapi/domain/auction/mocks"
	"github.com/mspark/gemapi/domain/gem"
	mGem "github.com/mspark/gemapi/domain/gem/mocks"
	"github.com/mspark/gemapi/domain/mspark"
	mMspark "github.com/mspark/gemapi/domain/mspark/mocks"
	"github.com/mspark/gemapi/domain/payment"
	mPayment "github.com/mspark/gemapi/domain/payment/mocks"
	"github.com/mspark/gemapi/service/coingate"
	mCoingate "github.com/mspark/gemapi/service/coingate/mocks"
	mMailer "github.com/mspark/gemapi/service/mailer/mocks"
)

var mockCtx = bCtx.Background()

type testsuite struct {
	suite.Suite

	paymentRepo *mPayment.Repo
	auctionRepo *mAuction.Repo
	accountRepo *mAccount.Repo
	gemRepo     *mGem.Repo
	msparkRepo  *mMspark.Repo
	gateway     *mCoingate.Client
	mailer      *mMailer.Mailer
	im          payment.UseCase
}

func (ts *testsuite) SetupTest() {
	ts.paymentRepo = &mPayment.Repo{}
	ts.auctionRepo = &mAuction.Repo{}
	ts.accountRepo = &mAccount.Repo{}
	ts.gemRepo = &mGem.Repo{}
	ts.msparkRepo = &mMspark.Repo{}
	ts.gateway = &mCoingate.Client{}
	ts.mailer = &mMailer.Mailer{}
	ts.im = New(&PaymentUseCaseCfg{
		PaymentRepo:     ts.paymentRepo,
		AuctionRepo:     ts.auctionRepo,
		AccountRepo:     ts.accountRepo,
		GemRepo:         ts.gemRepo,
		MsparkRepo:      ts.msparkRepo,
		Gateway:         ts.gateway,
		Mailer:          ts.mailer,
		ApiUrl:          "https://api.mspark.example",
		ClientUrl:       "https://mspark.example",
		PriceCurrency:   "USD",
		ReceiveCurrency: "BTC",
	})

	ts.mailer.On("SendAsync", mock.Anything, mock.Anything).Maybe()
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) completedAuction(winner *domain.UserId) *auction.Auction {
	return &auction.Auction{
		Id:              "auction-1",
		PriceStart:      100,
		CurrentPrice:    150,
		Status:          auction.StatusCompleted,
		EndTime:         time.Now().Add(-time.Minute),
		HighestBidderId: winner,
		GemId:           "gem-1",
		MerchantId:      "merchant-1",
	}
}

func (ts *testsuite) stubGemAndMerchant() {
	ts.gemRepo.On("FindOne", mock.Anything, gem.Id("gem-1")).Return(&gem.Gem{
		Id:         "gem-1",
		Name:       "Paraiba Tourmaline",
		Status:     gem.StatusVerified,
		MerchantId: "merchant-1",
	}, nil)
	ts.accountRepo.On("FindOne", mock.Anything, domain.UserId("merchant-1")).Return(&account.Account{
		Id:       "merchant-1",
		Username: "merchant",
		Email:    "merchant@example.com",
		Role:     domain.RoleMerchant,
	}, nil)
}

func (ts *testsuite) TestOnAuctionCompletedNoWinner() {
	ts.stubGemAndMerchant()
	ts.gemRepo.On("Patch", mock.Anything, gem.Id("gem-1"), mock.Anything).Return(nil).Once()

	err := ts.im.OnAuctionCompleted(mockCtx, ts.completedAuction(nil))
	ts.NoError(err)

	ts.gemRepo.AssertExpectations(ts.T())
	ts.paymentRepo.AssertNotCalled(ts.T(), "Create", mock.Anything, mock.Anything)
	ts.gateway.AssertNotCalled(ts.T(), "CreateOrder", mock.Anything, mock.Anything)
	ts.mailer.AssertNumberOfCalls(ts.T(), "SendAsync", 1)
}

func (ts *testsuite) TestOnAuctionCompletedWithWinner() {
	winner := domain.UserId("bidder-1")
	ts.stubGemAndMerchant()
	ts.gemRepo.On("Patch", mock.Anything, gem.Id("gem-1"), mock.Anything).Return(nil).Once()
	ts.accountRepo.On("FindOne", mock.Anything, winner).Return(&account.Account{
		Id:       winner,
		Username: "winner",
		Email:    "winner@example.com",
		Role:     domain.RoleBidder,
	}, nil)

	var orderReq *coingate.CreateOrderRequest
	ts.gateway.On("CreateOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			orderReq = args.Get(1).(*coingate.CreateOrderRequest)
		}).
		Return(&coingate.Order{
			Id:         9001,
			Status:     "new",
			Token:      "tok-1",
			PaymentUrl: "https://gateway.example/invoice/9001",
		}, nil).Once()

	var created *payment.Payment
	ts.paymentRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*payment.Payment)
		}).
		Return(nil).Once()

	err := ts.im.OnAuctionCompleted(mockCtx, ts.completedAuction(&winner))
	ts.NoError(err)

	ts.Equal("150.00", orderReq.PriceAmount)
	ts.Equal("USD", orderReq.PriceCurrency)
	ts.Equal("winner@example.com", orderReq.PurchaserEmail)

	ts.Equal(payment.TypeOrder, created.Type)
	ts.Equal(payment.StatusNew, created.Status)
	ts.Equal(int64(9001), created.GatewayId)
	ts.Equal("tok-1", created.Token())
	// winner payment link + merchant completion
	ts.mailer.AssertNumberOfCalls(ts.T(), "SendAsync", 2)
}

func (ts *testsuite) TestOnAuctionCompletedGatewayFailure() {
	winner := domain.UserId("bidder-1")
	ts.stubGemAndMerchant()
	ts.gemRepo.On("Patch", mock.Anything, gem.Id("gem-1"), mock.Anything).Return(nil).Once()
	ts.accountRepo.On("FindOne", mock.Anything, winner).Return(&account.Account{
		Id:    winner,
		Email: "winner@example.com",
	}, nil)
	ts.gateway.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, domain.ErrUpstreamFailure).Once()

	err := ts.im.OnAuctionCompleted(mockCtx, ts.completedAuction(&winner))
	ts.ErrorIs(err, domain.ErrUpstreamFailure)
	ts.paymentRepo.AssertNotCalled(ts.T(), "Create", mock.Anything, mock.Anything)
}

func (ts *testsuite) orderPayment(status payment.Status) *payment.Payment {
	return &payment.Payment{
		Id:                 "pay-1",
		Amount:             "150.00",
		PriceCurrency:      "USD",
		ReceiveCurrency:    "BTC",
		Type:               payment.TypeOrder,
		Status:             status,
		Bidder:             "bidder-1",
		Merchant:           "merchant-1",
		AuctionId:          "auction-1",
		GatewayId:          9001,
		GatewayPaymentLink: "https://gateway.example/invoice/9001",
		Metadata: map[string]interface{}{
			payment.MetaGatewayToken: "tok-1",
		},
	}
}

func (ts *testsuite) TestOrderCallbackTokenMismatch() {
	ts.paymentRepo.On("FindByGatewayId", mock.Anything, int64(9001)).
		Return(ts.orderPayment(payment.StatusNew), nil).Once()

	_, err := ts.im.OrderCallback(mockCtx, payment.OrderCallbackPayload{
		Id:     9001,
		Status: payment.StatusPaid,
		Token:  "tok-evil",
	})
	ts.ErrorIs(err, domain.ErrForbidden)
	ts.paymentRepo.AssertNotCalled(ts.T(), "Patch", mock.Anything, mock.Anything, mock.Anything)
}

func (ts *testsuite) TestOrderCallbackUnknownGatewayId() {
	ts.paymentRepo.On("FindByGatewayId", mock.Anything, int64(404)).
		Return(nil, domain.ErrNotFound).Once()

	_, err := ts.im.OrderCallback(mockCtx, payment.OrderCallbackPayload{
		Id:     404,
		Status: payment.StatusPaid,
		Token:  "tok-1",
	})
	ts.ErrorIs(err, domain.ErrNotFound)
}

func (ts *testsuite) TestOrderCallbackPaid() {
	ts.paymentRepo.On("FindByGatewayId", mock.Anything, int64(9001)).
		Return(ts.orderPayment(payment.StatusPending), nil).Once()

	var patched payment.Patchable
	ts.paymentRepo.On("Patch", mock.Anything, "pay-1", mock.Anything).
		Run(func(args mock.Arguments) {
			patched = args.Get(2).(payment.Patchable)
		}).
		Return(nil).Once()
	ts.accountRepo.On("FindOne", mock.Anything, domain.UserId("bidder-1")).Return(&account.Account{
		Id:    "bidder-1",
		Email: "winner@example.com",
	}, nil)
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).
		Return(ts.completedAuction(nil), nil)
	ts.gemRepo.On("FindOne", mock.Anything, gem.Id("gem-1")).Return(&gem.Gem{
		Id:   "gem-1",
		Name: "Paraiba Tourmaline",
	}, nil)

	paidAt := "2026-08-31T12:00:00Z"
	payAmount := "0.0042"
	p, err := ts.im.OrderCallback(mockCtx, payment.OrderCallbackPayload{
		Id:           9001,
		Status:       payment.StatusPaid,
		Token:        "tok-1",
		IsRefundable: true,
		PaidAt:       &paidAt,
		PayAmount:    &payAmount,
	})
	ts.NoError(err)
	ts.Equal(payment.StatusPaid, p.Status)
	ts.Equal(payment.StatusPaid, *patched.Status)
	ts.Equal(paidAt, patched.Metadata[payment.MetaPaidAt])
	ts.Equal(true, patched.Metadata[payment.MetaIsRefundable])
	// original token survives the merge
	ts.Equal("tok-1", patched.Metadata[payment.MetaGatewayToken])
	ts.mailer.AssertNumberOfCalls(ts.T(), "SendAsync", 1)
}

func (ts *testsuite) TestOrderCallbackIntermediateStatusNoMail() {
	ts.paymentRepo.On("FindByGatewayId", mock.Anything, int64(9001)).
		Return(ts.orderPayment(payment.StatusNew), nil).Once()
	ts.paymentRepo.On("Patch", mock.Anything, "pay-1", mock.Anything).Return(nil).Once()

	_, err := ts.im.OrderCallback(mockCtx, payment.OrderCallbackPayload{
		Id:     9001,
		Status: payment.StatusConfirming,
		Token:  "tok-1",
	})
	ts.NoError(err)
	ts.mailer.AssertNumberOfCalls(ts.T(), "SendAsync", 0)
}

func (ts *testsuite) TestRecreateOrderRejectsPaid() {
	ts.paymentRepo.On("FindAll", mock.Anything, mock.Anything, mock.Anything).
		Return([]*payment.Payment{ts.orderPayment(payment.StatusPaid)}, nil).Once()

	_, err := ts.im.RecreateOrder(mockCtx, "auction-1")
	ts.ErrorIs(err, domain.ErrConflict)
	ts.gateway.AssertNotCalled(ts.T(), "CreateOrder", mock.Anything, mock.Anything)
}

func (ts *testsuite) TestRecreateOrderArchivesOldAttempt() {
	winner := domain.UserId("bidder-1")
	ts.paymentRepo.On("FindAll", mock.Anything, mock.Anything, mock.Anything).
		Return([]*payment.Payment{ts.orderPayment(payment.StatusExpired)}, nil).Once()
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).
		Return(ts.completedAuction(&winner), nil)
	ts.gemRepo.On("FindOne", mock.Anything, gem.Id("gem-1")).Return(&gem.Gem{
		Id:   "gem-1",
		Name: "Paraiba Tourmaline",
	}, nil)
	ts.accountRepo.On("FindOne", mock.Anything, winner).Return(&account.Account{
		Id:    winner,
		Email: "winner@example.com",
	}, nil)
	ts.paymentRepo.On("MarkRecreating", mock.Anything, "pay-1").Return(nil).Once()
	ts.gateway.On("CreateOrder", mock.Anything, mock.Anything).Return(&coingate.Order{
		Id:         9002,
		Status:     "new",
		Token:      "tok-2",
		PaymentUrl: "https://gateway.example/invoice/9002",
	}, nil).Once()

	var patched payment.Patchable
	ts.paymentRepo.On("Patch", mock.Anything, "pay-1", mock.Anything).
		Run(func(args mock.Arguments) {
			patched = args.Get(2).(payment.Patchable)
		}).
		Return(nil).Once()

	p, err := ts.im.RecreateOrder(mockCtx, "auction-1")
	ts.NoError(err)

	ts.Equal(int64(9002), p.GatewayId)
	ts.Equal("tok-2", p.Token())

	attempts, ok := patched.Metadata[payment.MetaPreviousAttempts].([]interface{})
	ts.True(ok)
	ts.Len(attempts, 1)
	old := attempts[0].(map[string]interface{})
	ts.Equal(int64(9001), old["gatewayId"])
	ts.Equal("tok-1", old["token"])
	ts.mailer.AssertNumberOfCalls(ts.T(), "SendAsync", 1)
}

func (ts *testsuite) TestRecreateOrderLostRaceSkipsGateway() {
	// two admins race past the dead-order read, only the one holding
	// the status flip may open a new gateway order
	winner := domain.UserId("bidder-1")
	ts.paymentRepo.On("FindAll", mock.Anything, mock.Anything, mock.Anything).
		Return([]*payment.Payment{ts.orderPayment(payment.StatusExpired)}, nil).Once()
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).
		Return(ts.completedAuction(&winner), nil)
	ts.gemRepo.On("FindOne", mock.Anything, gem.Id("gem-1")).Return(&gem.Gem{
		Id:   "gem-1",
		Name: "Paraiba Tourmaline",
	}, nil)
	ts.accountRepo.On("FindOne", mock.Anything, winner).Return(&account.Account{
		Id:    winner,
		Email: "winner@example.com",
	}, nil)
	ts.paymentRepo.On("MarkRecreating", mock.Anything, "pay-1").
		Return(domain.ErrConflict).Once()

	_, err := ts.im.RecreateOrder(mockCtx, "auction-1")
	ts.ErrorIs(err, domain.ErrConflict)
	ts.gateway.AssertNotCalled(ts.T(), "CreateOrder", mock.Anything, mock.Anything)
}

func (ts *testsuite) TestRecreateOrderGatewayFailureRestoresStatus() {
	winner := domain.UserId("bidder-1")
	ts.paymentRepo.On("FindAll", mock.Anything, mock.Anything, mock.Anything).
		Return([]*payment.Payment{ts.orderPayment(payment.StatusExpired)}, nil).Once()
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).
		Return(ts.completedAuction(&winner), nil)
	ts.gemRepo.On("FindOne", mock.Anything, gem.Id("gem-1")).Return(&gem.Gem{
		Id:   "gem-1",
		Name: "Paraiba Tourmaline",
	}, nil)
	ts.accountRepo.On("FindOne", mock.Anything, winner).Return(&account.Account{
		Id:    winner,
		Email: "winner@example.com",
	}, nil)
	ts.paymentRepo.On("MarkRecreating", mock.Anything, "pay-1").Return(nil).Once()
	ts.gateway.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, errors.New("gateway down")).Once()

	var patched payment.Patchable
	ts.paymentRepo.On("Patch", mock.Anything, "pay-1", mock.Anything).
		Run(func(args mock.Arguments) {
			patched = args.Get(2).(payment.Patchable)
		}).
		Return(nil).Once()

	_, err := ts.im.RecreateOrder(mockCtx, "auction-1")
	ts.Error(err)
	ts.Equal(payment.StatusExpired, *patched.Status)
}

func (ts *testsuite) TestCreateSendRequiresCompletedAuction() {
	a := ts.completedAuction(nil)
	a.Status = auction.StatusActive
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)

	_, err := ts.im.CreateSend(mockCtx, "auction-1")
	ts.ErrorIs(err, domain.ErrInvalidTransition)
}

func (ts *testsuite) TestCreateSendRequiresPaidOrder() {
	winner := domain.UserId("bidder-1")
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).
		Return(ts.completedAuction(&winner), nil)
	ts.paymentRepo.On("Count", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0, nil).Once()

	_, err := ts.im.CreateSend(mockCtx, "auction-1")
	ts.ErrorIs(err, domain.ErrBadParamInput)
}

func (ts *testsuite) stubPayoutInputs() {
	ts.msparkRepo.On("FindPrimary", mock.Anything).Return(&mspark.Mspark{
		Id:              "mspark-1",
		Type:            mspark.TypePrimary,
		PlatformFee:     "0.05",
		VerificationFee: "0.02",
		PayoutCurrency:  "BTC",
	}, nil).Once()
	ts.accountRepo.On("FindOne", mock.Anything, domain.UserId("merchant-1")).Return(&account.Account{
		Id:    "merchant-1",
		Email: "merchant@example.com",
	}, nil)
	ts.gateway.On("GetExchangeRate", mock.Anything, "USD", "BTC").
		Return(decimal.NewFromFloat(0.00002), nil).Once()
}

func (ts *testsuite) TestCreateSendRejectsDuplicate() {
	// both callers survive the paid-order check, the reservation lets
	// exactly one through to the gateway
	winner := domain.UserId("bidder-1")
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).
		Return(ts.completedAuction(&winner), nil)
	ts.paymentRepo.On("Count", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(1, nil).Once()
	ts.stubPayoutInputs()
	ts.paymentRepo.On("ReserveSend", mock.Anything, mock.Anything).
		Return(domain.ErrConflict).Once()

	_, err := ts.im.CreateSend(mockCtx, "auction-1")
	ts.ErrorIs(err, domain.ErrConflict)
	ts.gateway.AssertNotCalled(ts.T(), "CreatePayout", mock.Anything, mock.Anything)
}

func (ts *testsuite) TestCreateSendPayoutMath() {
	winner := domain.UserId("bidder-1")
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).
		Return(ts.completedAuction(&winner), nil)
	ts.paymentRepo.On("Count", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(1, nil).Once()
	ts.stubPayoutInputs()

	var reserved *payment.Payment
	ts.paymentRepo.On("ReserveSend", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			reserved = args.Get(1).(*payment.Payment)
		}).
		Return(nil).Once()

	var payoutReq *coingate.CreatePayoutRequest
	ts.gateway.On("CreatePayout", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			payoutReq = args.Get(1).(*coingate.CreatePayoutRequest)
		}).
		Return(&coingate.Payout{Id: 7001, Status: "pending"}, nil).Once()

	var patched payment.Patchable
	ts.paymentRepo.On("Patch", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			patched = args.Get(2).(payment.Patchable)
		}).
		Return(nil).Once()

	p, err := ts.im.CreateSend(mockCtx, "auction-1")
	ts.NoError(err)

	// 150 * (1 - 0.05 - 0.02) * 0.00002 = 0.00279
	ts.Equal("0.00279000", payoutReq.Amount)
	ts.Equal("BTC", payoutReq.Currency)
	ts.Equal(p.Id, payoutReq.ExternalId)
	ts.Equal(payment.TypeSend, reserved.Type)
	ts.Equal(payment.StatusDraft, reserved.Status)
	ts.Equal(payment.StatusPending, *patched.Status)
	ts.Equal(int64(7001), *patched.GatewayId)
	ts.Equal(int64(7001), p.GatewayId)
	ts.Equal(payment.StatusPending, p.Status)
}

func (ts *testsuite) TestCreateSendGatewayFailureFreesSlot() {
	winner := domain.UserId("bidder-1")
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).
		Return(ts.completedAuction(&winner), nil)
	ts.paymentRepo.On("Count", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(1, nil).Once()
	ts.stubPayoutInputs()
	ts.paymentRepo.On("ReserveSend", mock.Anything, mock.Anything).Return(nil).Once()
	ts.gateway.On("CreatePayout", mock.Anything, mock.Anything).
		Return(nil, errors.New("gateway down")).Once()

	var patched payment.Patchable
	ts.paymentRepo.On("Patch", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			patched = args.Get(2).(payment.Patchable)
		}).
		Return(nil).Once()

	_, err := ts.im.CreateSend(mockCtx, "auction-1")
	ts.Error(err)
	ts.Equal(payment.StatusInvalid, *patched.Status)
}

func (ts *testsuite) TestSendCallback() {
	send := ts.orderPayment(payment.StatusPending)
	send.Type = payment.TypeSend
	send.GatewayId = 7001
	ts.paymentRepo.On("FindByGatewayId", mock.Anything, int64(7001)).Return(send, nil).Once()
	ts.paymentRepo.On("Patch", mock.Anything, "pay-1", mock.Anything).Return(nil).Once()

	p, err := ts.im.SendCallback(mockCtx, payment.SendCallbackPayload{
		Id:     7001,
		Status: payment.StatusPaid,
	})
	ts.NoError(err)
	ts.Equal(payment.StatusPaid, p.Status)
}

func (ts *testsuite) TestSendCallbackRejectsOrderPayment() {
	ts.paymentRepo.On("FindByGatewayId", mock.Anything, int64(9001)).
		Return(ts.orderPayment(payment.StatusPaid), nil).Once()

	_, err := ts.im.SendCallback(mockCtx, payment.SendCallbackPayload{
		Id:     9001,
		Status: payment.StatusPaid,
	})
	ts.ErrorIs(err, domain.ErrNotFound)
}
