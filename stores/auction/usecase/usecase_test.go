package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/auction"
	mAuction "github.com/mspark/gemapi/domain/auction/mocks"
	"github.com/mspark/gemapi/domain/gem"
	mGem "github.com/mspark/gemapi/domain/gem/mocks"
	mQuery "github.com/mspark/gemapi/service/query/mocks"
)

var mockCtx = bCtx.Background()

type testsuite struct {
	suite.Suite

	auctionRepo *mAuction.Repo
	gemRepo     *mGem.Repo
	scheduler   *mAuction.Scheduler
	settlement  *mAuction.Settlement
	query       *mQuery.Mongo
	im          auction.UseCase
}

func (ts *testsuite) SetupTest() {
	ts.auctionRepo = &mAuction.Repo{}
	ts.gemRepo = &mGem.Repo{}
	ts.scheduler = &mAuction.Scheduler{}
	ts.settlement = &mAuction.Settlement{}
	ts.query = &mQuery.Mongo{}
	ts.im = New(&AuctionUseCaseCfg{
		AuctionRepo: ts.auctionRepo,
		GemRepo:     ts.gemRepo,
		Scheduler:   ts.scheduler,
		Settlement:  ts.settlement,
		Query:       ts.query,
	})

	ts.query.On("RunWithTransaction", mock.Anything, mock.Anything).
		Return(func(c bCtx.Ctx, run func(bCtx.Ctx) error) error {
			return run(c)
		}).Maybe()
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) verifiedGem() *gem.Gem {
	return &gem.Gem{
		Id:         "gem-1",
		Name:       "Kashmir Sapphire",
		Status:     gem.StatusVerified,
		MerchantId: "merchant-1",
	}
}

func (ts *testsuite) activeAuction() *auction.Auction {
	return &auction.Auction{
		Id:           "auction-1",
		PriceStart:   100,
		CurrentPrice: 100,
		Status:       auction.StatusActive,
		EndTime:      time.Now().Add(time.Hour),
		GemId:        "gem-1",
		MerchantId:   "merchant-1",
	}
}

func (ts *testsuite) merchant() auction.Actor {
	return auction.Actor{UserId: "merchant-1", Role: domain.RoleMerchant}
}

func (ts *testsuite) TestCreate() {
	ts.gemRepo.On("FindOne", mock.Anything, gem.Id("gem-1")).Return(ts.verifiedGem(), nil)
	ts.auctionRepo.On("Count", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(0, nil).Once()
	ts.auctionRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	ts.scheduler.On("Schedule", mock.Anything, mock.Anything, mock.Anything).Once()

	a, err := ts.im.Create(mockCtx, auction.CreatePayload{
		PriceStart: 100,
		EndTime:    time.Now().Add(time.Hour),
		GemId:      "gem-1",
		MerchantId: "merchant-1",
	})
	ts.NoError(err)
	ts.Equal(auction.StatusActive, a.Status)
	ts.Equal(float64(100), a.CurrentPrice)
	ts.NotEmpty(a.Id)
	ts.scheduler.AssertExpectations(ts.T())
}

func (ts *testsuite) TestCreateRejectsPastEndTime() {
	_, err := ts.im.Create(mockCtx, auction.CreatePayload{
		PriceStart: 100,
		EndTime:    time.Now().Add(-time.Minute),
		GemId:      "gem-1",
		MerchantId: "merchant-1",
	})
	ts.ErrorIs(err, domain.ErrBadParamInput)
}

func (ts *testsuite) TestCreateForeignGem() {
	g := ts.verifiedGem()
	g.MerchantId = "merchant-2"
	ts.gemRepo.On("FindOne", mock.Anything, gem.Id("gem-1")).Return(g, nil)

	_, err := ts.im.Create(mockCtx, auction.CreatePayload{
		PriceStart: 100,
		EndTime:    time.Now().Add(time.Hour),
		GemId:      "gem-1",
		MerchantId: "merchant-1",
	})
	ts.ErrorIs(err, domain.ErrForbidden)
}

func (ts *testsuite) TestCreateUnverifiedGem() {
	g := ts.verifiedGem()
	g.Status = gem.StatusPending
	ts.gemRepo.On("FindOne", mock.Anything, gem.Id("gem-1")).Return(g, nil)

	_, err := ts.im.Create(mockCtx, auction.CreatePayload{
		PriceStart: 100,
		EndTime:    time.Now().Add(time.Hour),
		GemId:      "gem-1",
		MerchantId: "merchant-1",
	})
	ts.ErrorIs(err, domain.ErrBadParamInput)
}

func (ts *testsuite) TestCreateGemAlreadyOnAuction() {
	ts.gemRepo.On("FindOne", mock.Anything, gem.Id("gem-1")).Return(ts.verifiedGem(), nil)
	ts.auctionRepo.On("Count", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(1, nil).Once()

	_, err := ts.im.Create(mockCtx, auction.CreatePayload{
		PriceStart: 100,
		EndTime:    time.Now().Add(time.Hour),
		GemId:      "gem-1",
		MerchantId: "merchant-1",
	})
	ts.ErrorIs(err, domain.ErrConflict)
	ts.auctionRepo.AssertNotCalled(ts.T(), "Create", mock.Anything, mock.Anything)
	ts.scheduler.AssertNotCalled(ts.T(), "Schedule", mock.Anything, mock.Anything, mock.Anything)
}

func (ts *testsuite) TestCancelActive() {
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(ts.activeAuction(), nil)
	ts.auctionRepo.On("Patch", mock.Anything, auction.Id("auction-1"), mock.Anything).Return(nil).Once()
	ts.scheduler.On("Cancel", mock.Anything, auction.Id("auction-1")).Once()

	a, err := ts.im.Cancel(mockCtx, "auction-1", ts.merchant())
	ts.NoError(err)
	ts.Equal(auction.StatusCancelled, a.Status)
	ts.scheduler.AssertExpectations(ts.T())
}

func (ts *testsuite) TestCancelByStranger() {
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(ts.activeAuction(), nil)

	_, err := ts.im.Cancel(mockCtx, "auction-1", auction.Actor{UserId: "merchant-2", Role: domain.RoleMerchant})
	ts.ErrorIs(err, domain.ErrForbidden)
}

func (ts *testsuite) TestCancelByAdmin() {
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(ts.activeAuction(), nil)
	ts.auctionRepo.On("Patch", mock.Anything, auction.Id("auction-1"), mock.Anything).Return(nil).Once()
	ts.scheduler.On("Cancel", mock.Anything, auction.Id("auction-1")).Once()

	_, err := ts.im.Cancel(mockCtx, "auction-1", auction.Actor{UserId: "admin-1", Role: domain.RoleAdmin})
	ts.NoError(err)
}

func (ts *testsuite) TestCancelCompleted() {
	a := ts.activeAuction()
	a.Status = auction.StatusCompleted
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)

	_, err := ts.im.Cancel(mockCtx, "auction-1", ts.merchant())
	ts.ErrorIs(err, domain.ErrInvalidTransition)
}

func (ts *testsuite) TestReactivateCancelled() {
	a := ts.activeAuction()
	a.Status = auction.StatusCancelled
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)
	ts.auctionRepo.On("Patch", mock.Anything, auction.Id("auction-1"), mock.Anything).Return(nil).Once()
	ts.scheduler.On("Schedule", mock.Anything, auction.Id("auction-1"), a.EndTime).Once()

	got, err := ts.im.Reactivate(mockCtx, "auction-1", ts.merchant())
	ts.NoError(err)
	ts.Equal(auction.StatusActive, got.Status)
	ts.scheduler.AssertExpectations(ts.T())
}

func (ts *testsuite) TestReactivateActive() {
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(ts.activeAuction(), nil)

	_, err := ts.im.Reactivate(mockCtx, "auction-1", ts.merchant())
	ts.ErrorIs(err, domain.ErrInvalidTransition)
}

func (ts *testsuite) TestExtendReschedules() {
	newEnd := time.Now().Add(2 * time.Hour)
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(ts.activeAuction(), nil)
	ts.auctionRepo.On("Patch", mock.Anything, auction.Id("auction-1"), mock.Anything).Return(nil).Once()
	ts.scheduler.On("Schedule", mock.Anything, auction.Id("auction-1"), newEnd).Once()

	got, err := ts.im.Extend(mockCtx, "auction-1", newEnd, ts.merchant())
	ts.NoError(err)
	ts.Equal(newEnd, got.EndTime)
	ts.scheduler.AssertExpectations(ts.T())
}

func (ts *testsuite) TestExtendRejectsPastEndTime() {
	_, err := ts.im.Extend(mockCtx, "auction-1", time.Now().Add(-time.Minute), ts.merchant())
	ts.ErrorIs(err, domain.ErrBadParamInput)
}

func (ts *testsuite) TestCompleteRunsSettlement() {
	a := ts.activeAuction()
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)
	ts.auctionRepo.On("CompleteIfActive", mock.Anything, auction.Id("auction-1")).Return(nil).Once()
	ts.settlement.On("OnAuctionCompleted", mock.Anything, a).Return(nil).Once()
	ts.scheduler.On("Cancel", mock.Anything, auction.Id("auction-1")).Once()

	got, err := ts.im.Complete(mockCtx, "auction-1", auction.TriggerSchedule, nil)
	ts.NoError(err)
	ts.NotNil(got)
	ts.settlement.AssertExpectations(ts.T())
	ts.scheduler.AssertExpectations(ts.T())
}

func (ts *testsuite) TestCompleteLosesRace() {
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(ts.activeAuction(), nil)
	ts.auctionRepo.On("CompleteIfActive", mock.Anything, auction.Id("auction-1")).
		Return(domain.ErrAlreadyCompleted).Once()

	_, err := ts.im.Complete(mockCtx, "auction-1", auction.TriggerSchedule, nil)
	ts.ErrorIs(err, domain.ErrAlreadyCompleted)
	ts.settlement.AssertNotCalled(ts.T(), "OnAuctionCompleted", mock.Anything, mock.Anything)
}

func (ts *testsuite) TestCompleteAlreadyCompleted() {
	a := ts.activeAuction()
	a.Status = auction.StatusCompleted
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)

	_, err := ts.im.Complete(mockCtx, "auction-1", auction.TriggerSchedule, nil)
	ts.ErrorIs(err, domain.ErrAlreadyCompleted)
}

func (ts *testsuite) TestCompleteByAdminRequiresActor() {
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(ts.activeAuction(), nil)

	_, err := ts.im.Complete(mockCtx, "auction-1", auction.TriggerAdmin, nil)
	ts.ErrorIs(err, domain.ErrForbidden)

	stranger := auction.Actor{UserId: "bidder-1", Role: domain.RoleBidder}
	_, err = ts.im.Complete(mockCtx, "auction-1", auction.TriggerAdmin, &stranger)
	ts.ErrorIs(err, domain.ErrForbidden)
}

func (ts *testsuite) TestCompleteSettlementFailureAbortsTransition() {
	a := ts.activeAuction()
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)
	ts.auctionRepo.On("CompleteIfActive", mock.Anything, auction.Id("auction-1")).Return(nil).Once()
	ts.settlement.On("OnAuctionCompleted", mock.Anything, a).Return(domain.ErrUpstreamFailure).Once()

	_, err := ts.im.Complete(mockCtx, "auction-1", auction.TriggerSchedule, nil)
	ts.ErrorIs(err, domain.ErrUpstreamFailure)
	ts.scheduler.AssertNotCalled(ts.T(), "Cancel", mock.Anything, mock.Anything)
}

func (ts *testsuite) TestSoftDeleteActive() {
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(ts.activeAuction(), nil)

	err := ts.im.SoftDelete(mockCtx, "auction-1", ts.merchant())
	ts.ErrorIs(err, domain.ErrInvalidTransition)
}

func (ts *testsuite) TestSoftDeleteCancelled() {
	a := ts.activeAuction()
	a.Status = auction.StatusCancelled
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)
	ts.auctionRepo.On("Patch", mock.Anything, auction.Id("auction-1"), mock.Anything).Return(nil).Once()
	ts.scheduler.On("Cancel", mock.Anything, auction.Id("auction-1")).Once()

	err := ts.im.SoftDelete(mockCtx, "auction-1", ts.merchant())
	ts.NoError(err)
}

func (ts *testsuite) TestGetByIdHidesDeleted() {
	a := ts.activeAuction()
	a.IsDeleted = true
	ts.auctionRepo.On("FindOne", mock.Anything, auction.Id("auction-1")).Return(a, nil)

	_, err := ts.im.GetById(mockCtx, "auction-1")
	ts.ErrorIs(err, domain.ErrNotFound)
}

func (ts *testsuite) TestListActive() {
	auctions := []*auction.Auction{ts.activeAuction()}
	ts.auctionRepo.On("FindAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(auctions, nil).Once()
	ts.auctionRepo.On("Count", mock.Anything, mock.Anything, mock.Anything).Return(1, nil).Once()

	res, cnt, err := ts.im.ListActive(mockCtx, 0, 20)
	ts.NoError(err)
	ts.Equal(1, cnt)
	ts.Len(res, 1)
}
