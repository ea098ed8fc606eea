package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/account"
	mAccount "github.com/mspark/gemapi/domain/account/mocks"
	"github.com/mspark/gemapi/domain/auction"
	mAuction "github.com/mspark/gemapi/domain/auction/mocks"
	"github.com/mspark/gemapi/domain/bid"
	mBid "github.com/mspark/gemapi/domain/bid/mocks"
	"github.com/mspark/gemapi/domain/gem"
	mGem "github.com/mspark/gemapi/domain/gem/mocks"
	mMailer "github.com/mspark/gemapi/service/mailer/mocks"
	mQuery "github.com/mspark/gemapi/service/query/mocks"
)

var mockCtx = bCtx.Background()

type testsuite struct {
	suite.Suite

	bidRepo     *mBid.Repo
	auctionRepo *mAuction.Repo
	accountRepo *mAccount.Repo
	gemRepo     *mGem.Repo
	completer   *mAuction.Completer
	mailer      *mMailer.Mailer
	query       *mQuery.Mongo
	im          bid.UseCase
}

func (ts *testsuite) SetupTest() {
	ts.bidRepo = &mBid.Repo{}
	ts.auctionRepo = &mAuction.Repo{}
	ts.accountRepo = &mAccount.Repo{}
	ts.gemRepo = &mGem.Repo{}
	ts.completer = &mAuction.Completer{}
	ts.mailer = &mMailer.Mailer{}
	ts.query = &mQuery.Mongo{}
	ts.im = New(&BidUseCaseCfg{
		BidRepo:     ts.bidRepo,
		AuctionRepo: ts.auctionRepo,
		AccountRepo: ts.accountRepo,
		GemRepo:     ts.gemRepo,
		Completer:   ts.completer,
		Mailer:      ts.mailer,
		Query:       ts.query,
		ClientUrl:   "https://mspark.example",
	})

	ts.query.On("RunWithTransaction", mock.Anything, mock.Anything).
		Return(func(c bCtx.Ctx, run func(bCtx.Ctx) error) error {
			return run(c)
		}).Maybe()
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) activeAuction() *auction.Auction {
	return &auction.Auction{
		Id:           "auction-1",
		PriceStart:   100,
		Status:       auction.StatusActive,
		CurrentPrice: 100,
		EndTime:      time.Now().Add(time.Hour),
		GemId:        "gem-1",
		MerchantId:   "merchant-1",
	}
}

func (ts *testsuite) TestPlaceAcceptsHigherBid() {
	a := ts.activeAuction()
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)
	ts.bidRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	ts.auctionRepo.On("AcceptBid", mock.Anything, auction.Id("auction-1"), mock.Anything, domain.UserId("bidder-1"), float64(120)).
		Return(nil).Once()

	res, err := ts.im.Place(mockCtx, "auction-1", "bidder-1", 120)
	ts.NoError(err)
	ts.Equal(float64(120), res.CurrentPrice)
	ts.Equal(domain.UserId("bidder-1"), res.Bid.Bidder)
	ts.NotEmpty(res.Bid.Id)

	ts.bidRepo.AssertExpectations(ts.T())
	ts.auctionRepo.AssertExpectations(ts.T())
	// no previous bidder, no outbid mail
	ts.mailer.AssertNumberOfCalls(ts.T(), "SendAsync", 0)
}

func (ts *testsuite) TestPlaceRejectsNonPositiveAmount() {
	_, err := ts.im.Place(mockCtx, "auction-1", "bidder-1", 0)
	ts.ErrorIs(err, domain.ErrBadParamInput)
}

func (ts *testsuite) TestPlaceUnknownAuction() {
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-x")).Return(nil, domain.ErrNotFound)

	_, err := ts.im.Place(mockCtx, "auction-x", "bidder-1", 120)
	ts.ErrorIs(err, domain.ErrNotFound)
}

func (ts *testsuite) TestPlaceOnCompletedAuction() {
	a := ts.activeAuction()
	a.Status = auction.StatusCompleted
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)

	_, err := ts.im.Place(mockCtx, "auction-1", "bidder-1", 120)
	ts.ErrorIs(err, domain.ErrAuctionEnded)
}

func (ts *testsuite) TestPlaceOnCancelledAuction() {
	a := ts.activeAuction()
	a.Status = auction.StatusCancelled
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)

	_, err := ts.im.Place(mockCtx, "auction-1", "bidder-1", 120)
	ts.ErrorIs(err, domain.ErrBadParamInput)
	ts.Contains(err.Error(), "cancelled")
}

func (ts *testsuite) TestPlaceOnEndedAuctionTriggersCompletion() {
	a := ts.activeAuction()
	a.EndTime = time.Now().Add(-time.Minute)
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)
	ts.completer.On("Complete", mock.Anything, auction.Id("auction-1"), auction.TriggerBid, (*auction.Actor)(nil)).
		Return(a, nil).Once()

	_, err := ts.im.Place(mockCtx, "auction-1", "bidder-1", 120)
	ts.ErrorIs(err, domain.ErrAuctionEnded)
	ts.completer.AssertExpectations(ts.T())
}

func (ts *testsuite) TestPlaceOnOwnAuction() {
	a := ts.activeAuction()
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)

	_, err := ts.im.Place(mockCtx, "auction-1", "merchant-1", 120)
	ts.ErrorIs(err, domain.ErrForbidden)
}

func (ts *testsuite) TestPlaceRejectsLowBid() {
	a := ts.activeAuction()
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)

	_, err := ts.im.Place(mockCtx, "auction-1", "bidder-1", 100)
	ts.ErrorIs(err, domain.ErrBidTooLow)
}

func (ts *testsuite) TestPlaceLostRaceSeesWinnerPrice() {
	a := ts.activeAuction()
	raced := ts.activeAuction()
	raced.CurrentPrice = 150

	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil).Once()
	ts.bidRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	ts.auctionRepo.On("AcceptBid", mock.Anything, auction.Id("auction-1"), mock.Anything, domain.UserId("bidder-1"), float64(120)).
		Return(domain.ErrBidTooLow).Once()
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(raced, nil).Once()

	_, err := ts.im.Place(mockCtx, "auction-1", "bidder-1", 120)
	ts.ErrorIs(err, domain.ErrBidTooLow)
	ts.Contains(err.Error(), "150")
}

func (ts *testsuite) TestPlaceNotifiesOutbidBidder() {
	prev := domain.UserId("bidder-0")
	a := ts.activeAuction()
	a.HighestBidderId = &prev

	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)
	ts.bidRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	ts.auctionRepo.On("AcceptBid", mock.Anything, auction.Id("auction-1"), mock.Anything, domain.UserId("bidder-1"), float64(120)).
		Return(nil).Once()
	ts.accountRepo.On("FindOne", mock.Anything, prev).Return(&account.Account{
		Id:    prev,
		Email: "prev@example.com",
	}, nil).Once()
	ts.gemRepo.On("FindOne", mock.Anything, gem.Id("gem-1")).Return(&gem.Gem{
		Id:   "gem-1",
		Name: "Burmese Ruby",
	}, nil).Once()
	ts.mailer.On("SendAsync", mock.Anything, mock.Anything).Once()

	_, err := ts.im.Place(mockCtx, "auction-1", "bidder-1", 120)
	ts.NoError(err)
	ts.mailer.AssertExpectations(ts.T())
}

func (ts *testsuite) TestPlaceSelfOutbidSendsNoMail() {
	prev := domain.UserId("bidder-1")
	a := ts.activeAuction()
	a.HighestBidderId = &prev

	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)
	ts.bidRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	ts.auctionRepo.On("AcceptBid", mock.Anything, auction.Id("auction-1"), mock.Anything, domain.UserId("bidder-1"), float64(120)).
		Return(nil).Once()

	_, err := ts.im.Place(mockCtx, "auction-1", "bidder-1", 120)
	ts.NoError(err)
	ts.mailer.AssertNumberOfCalls(ts.T(), "SendAsync", 0)
}

func (ts *testsuite) TestListByBidder() {
	bids := []*bid.Bid{{Id: "bid-1", Bidder: "bidder-1"}}
	ts.bidRepo.On("FindAll", mock.Anything, mock.Anything, mock.Anything).Return(bids, nil).Once()
	ts.bidRepo.On("Count", mock.Anything, mock.Anything).Return(1, nil).Once()

	res, cnt, err := ts.im.ListByBidder(mockCtx, "bidder-1", 0, 10)
	ts.NoError(err)
	ts.Equal(1, cnt)
	ts.Len(res, 1)
}
