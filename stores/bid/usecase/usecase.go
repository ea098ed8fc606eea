package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/log"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/account"
	"github.com/mspark/gemapi/domain/auction"
	"github.com/mspark/gemapi/domain/bid"
	"github.com/mspark/gemapi/domain/gem"
	"github.com/mspark/gemapi/service/mailer"
	"github.com/mspark/gemapi/service/query"
)

type BidUseCaseCfg struct {
	BidRepo     bid.Repo
	AuctionRepo auction.Repo
	AccountRepo account.Repo
	GemRepo     gem.Repo
	Completer   auction.Completer
	Mailer      mailer.Mailer
	Query       query.Mongo
	ClientUrl   string
}

type impl struct {
	bidRepo     bid.Repo
	auctionRepo auction.Repo
	accountRepo account.Repo
	gemRepo     gem.Repo
	completer   auction.Completer
	mailer      mailer.Mailer
	query       query.Mongo
	clientUrl   string
}

func New(cfg *BidUseCaseCfg) bid.UseCase {
	return &impl{
		bidRepo:     cfg.BidRepo,
		auctionRepo: cfg.AuctionRepo,
		accountRepo: cfg.AccountRepo,
		gemRepo:     cfg.GemRepo,
		completer:   cfg.Completer,
		mailer:      cfg.Mailer,
		query:       cfg.Query,
		clientUrl:   cfg.ClientUrl,
	}
}

func (im *impl) Place(c ctx.Ctx, auctionId auction.Id, bidder domain.UserId, amount float64) (*bid.PlaceResult, error) {
	normalized := decimal.NewFromFloat(amount).Round(2)
	if !normalized.IsPositive() {
		return nil, domain.ErrBadParamInput
	}
	amount, _ = normalized.Float64()

	a, err := im.auctionRepo.FindOne(c, auctionId)
	if err != nil {
		return nil, err
	}
	if a.IsDeleted {
		return nil, domain.ErrNotFound
	}
	if a.Status == auction.StatusCancelled {
		return nil, xerrors.Errorf("auction is cancelled: %w", domain.ErrBadParamInput)
	}
	if a.Status != auction.StatusActive {
		return nil, domain.ErrAuctionEnded
	}
	if a.Ended(time.Now()) {
		// a bid arriving past endTime is the original trigger for
		// completion, the bid itself still fails
		if _, err := im.completer.Complete(c, auctionId, auction.TriggerBid, nil); err != nil && err != domain.ErrAlreadyCompleted {
			c.WithFields(log.Fields{
				"auctionId": auctionId,
				"err":       err,
			}).Error("completer.Complete failed")
		}
		return nil, domain.ErrAuctionEnded
	}
	if bidder.Equals(a.MerchantId) {
		return nil, domain.ErrForbidden
	}
	if amount <= a.CurrentPrice {
		return nil, xerrors.Errorf("current price is %.2f: %w", a.CurrentPrice, domain.ErrBidTooLow)
	}

	now := time.Now()
	b := &bid.Bid{
		Id:        uuid.New().String(),
		Bidder:    bidder,
		Amount:    amount,
		AuctionId: auctionId,
		CreatedAt: now,
		UpdatedAt: now,
	}

	prevBidder := a.HighestBidderId

	if err := im.query.RunWithTransaction(c, func(c ctx.Ctx) error {
		if err := im.bidRepo.Create(c, b); err != nil {
			return err
		}
		return im.auctionRepo.AcceptBid(c, auctionId, b.Id, bidder, amount)
	}); err != nil {
		if err == domain.ErrBidTooLow {
			// lost the race, tell the bidder where the price is now
			if cur, ferr := im.auctionRepo.FindOne(c, auctionId); ferr == nil {
				return nil, xerrors.Errorf("current price is %.2f: %w", cur.CurrentPrice, domain.ErrBidTooLow)
			}
			return nil, err
		}
		c.WithFields(log.Fields{
			"auctionId": auctionId,
			"bidder":    bidder,
			"err":       err,
		}).Error("place bid transaction failed")
		return nil, err
	}

	im.notifyOutbid(c, a, prevBidder, bidder, amount)

	return &bid.PlaceResult{Bid: b, CurrentPrice: amount}, nil
}

func (im *impl) ListByBidder(c ctx.Ctx, bidder domain.UserId, offset, limit int32) ([]*bid.Bid, int, error) {
	opts := []bid.FindAllOptionsFunc{
		bid.WithBidder(bidder),
		bid.WithPagination(offset, limit),
	}
	bids, err := im.bidRepo.FindAll(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("bidRepo.FindAll failed")
		return nil, 0, err
	}
	cnt, err := im.bidRepo.Count(c, bid.WithBidder(bidder))
	if err != nil {
		c.WithField("err", err).Error("bidRepo.Count failed")
		return nil, 0, err
	}
	return bids, cnt, nil
}

func (im *impl) notifyOutbid(c ctx.Ctx, a *auction.Auction, prevBidder *domain.UserId, newBidder domain.UserId, amount float64) {
	if prevBidder == nil || prevBidder.IsEmpty() || prevBidder.Equals(newBidder) {
		return
	}

	acc, err := im.accountRepo.FindOne(c, *prevBidder)
	if err != nil {
		c.WithFields(log.Fields{
			"bidder": *prevBidder,
			"err":    err,
		}).Error("accountRepo.FindOne failed")
		return
	}

	g, err := im.gemRepo.FindOne(c, a.GemId)
	if err != nil {
		c.WithFields(log.Fields{
			"gemId": a.GemId,
			"err":   err,
		}).Error("gemRepo.FindOne failed")
		return
	}

	msg, err := mailer.OutbidMail(acc.Email, mailer.AuctionMail{
		AuctionId:    a.Id.String(),
		GemId:        g.Id.String(),
		GemName:      g.Name,
		GemType:      g.Type,
		CurrentPrice: decimal.NewFromFloat(amount).StringFixed(2),
		EndTime:      a.EndTime,
		AuctionUrl:   im.clientUrl + "/auction-detail/" + a.Id.String(),
	}, decimal.NewFromFloat(amount).StringFixed(2), decimal.NewFromFloat(a.CurrentPrice).StringFixed(2))
	if err != nil {
		c.WithField("err", err).Error("OutbidMail failed")
		return
	}
	im.mailer.SendAsync(c, msg)
}
