package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/log"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/auction"
	"github.com/mspark/gemapi/domain/gem"
	"github.com/mspark/gemapi/service/query"
)

type AuctionUseCaseCfg struct {
	AuctionRepo auction.Repo
	GemRepo     gem.Repo
	Scheduler   auction.Scheduler
	Settlement  auction.Settlement
	Query       query.Mongo
}

type impl struct {
	auctionRepo auction.Repo
	gemRepo     gem.Repo
	scheduler   auction.Scheduler
	settlement  auction.Settlement
	query       query.Mongo
}

func New(cfg *AuctionUseCaseCfg) auction.UseCase {
	return &impl{
		auctionRepo: cfg.AuctionRepo,
		gemRepo:     cfg.GemRepo,
		scheduler:   cfg.Scheduler,
		settlement:  cfg.Settlement,
		query:       cfg.Query,
	}
}

func (im *impl) Create(c ctx.Ctx, payload auction.CreatePayload) (*auction.Auction, error) {
	now := time.Now()
	if payload.PriceStart <= 0 || !payload.EndTime.After(now) {
		return nil, domain.ErrBadParamInput
	}

	g, err := im.gemRepo.FindOne(c, payload.GemId)
	if err != nil {
		return nil, err
	}
	if g.IsDeleted {
		return nil, domain.ErrNotFound
	}
	if !g.MerchantId.Equals(payload.MerchantId) {
		return nil, domain.ErrForbidden
	}
	if g.Status != gem.StatusVerified {
		return nil, domain.ErrBadParamInput
	}

	a := &auction.Auction{
		Id:         auction.Id(uuid.New().String()),
		PriceStart: payload.PriceStart,
		StartTime:  now,
		EndTime:    payload.EndTime,
		Status:     auction.StatusActive,
		// the floor for the first bid; the stored-zero default of the
		// previous schema let a first bid win below priceStart
		CurrentPrice: payload.PriceStart,
		Bids:         []string{},
		GemId:        payload.GemId,
		MerchantId:   payload.MerchantId,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := im.query.RunWithTransaction(c, func(c ctx.Ctx) error {
		cnt, err := im.auctionRepo.Count(c,
			auction.WithGemId(payload.GemId),
			auction.WithStatus(auction.StatusActive),
			auction.WithIsDeleted(false),
		)
		if err != nil {
			return err
		}
		if cnt > 0 {
			return domain.ErrConflict
		}
		return im.auctionRepo.Create(c, a)
	}); err != nil {
		if err != domain.ErrConflict {
			c.WithFields(log.Fields{
				"gemId": payload.GemId,
				"err":   err,
			}).Error("create auction transaction failed")
		}
		return nil, err
	}

	im.scheduler.Schedule(c, a.Id, a.EndTime)
	return a, nil
}

func (im *impl) GetById(c ctx.Ctx, id auction.Id) (*auction.Auction, error) {
	a, err := im.auctionRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	if a.IsDeleted {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (im *impl) ListActive(c ctx.Ctx, offset, limit int32) ([]*auction.Auction, int, error) {
	filters := []auction.FindAllOptionsFunc{
		auction.WithStatus(auction.StatusActive),
		auction.WithIsDeleted(false),
	}
	// soonest ending first
	res, err := im.auctionRepo.FindAll(c, append(filters,
		auction.WithSort("endTime"),
		auction.WithPagination(offset, limit),
	)...)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := im.auctionRepo.Count(c, filters...)
	if err != nil {
		return nil, 0, err
	}
	return res, cnt, nil
}

func (im *impl) ListByMerchant(c ctx.Ctx, merchantId domain.UserId) ([]*auction.Auction, error) {
	return im.auctionRepo.FindAll(c,
		auction.WithMerchantId(merchantId),
		auction.WithIsDeleted(false),
		auction.WithSort("-createdAt"),
	)
}

func (im *impl) Cancel(c ctx.Ctx, id auction.Id, actor auction.Actor) (*auction.Auction, error) {
	a, err := im.findManageable(c, id, actor)
	if err != nil {
		return nil, err
	}
	if a.Status != auction.StatusActive && a.Status != auction.StatusPending {
		return nil, domain.ErrInvalidTransition
	}

	if err := im.patchStatus(c, id, auction.StatusCancelled); err != nil {
		return nil, err
	}
	im.scheduler.Cancel(c, id)

	a.Status = auction.StatusCancelled
	return a, nil
}

func (im *impl) Reactivate(c ctx.Ctx, id auction.Id, actor auction.Actor) (*auction.Auction, error) {
	a, err := im.findManageable(c, id, actor)
	if err != nil {
		return nil, err
	}
	if a.Status != auction.StatusCancelled {
		return nil, domain.ErrInvalidTransition
	}

	if err := im.patchStatus(c, id, auction.StatusActive); err != nil {
		return nil, err
	}
	im.scheduler.Schedule(c, id, a.EndTime)

	a.Status = auction.StatusActive
	return a, nil
}

func (im *impl) Extend(c ctx.Ctx, id auction.Id, endTime time.Time, actor auction.Actor) (*auction.Auction, error) {
	if !endTime.After(time.Now()) {
		return nil, domain.ErrBadParamInput
	}

	a, err := im.findManageable(c, id, actor)
	if err != nil {
		return nil, err
	}
	if a.Status != auction.StatusActive {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now()
	if err := im.auctionRepo.Patch(c, id, auction.Patchable{
		EndTime:   &endTime,
		UpdatedAt: &now,
	}); err != nil {
		return nil, err
	}
	im.scheduler.Schedule(c, id, endTime)

	a.EndTime = endTime
	return a, nil
}

func (im *impl) Complete(c ctx.Ctx, id auction.Id, trigger auction.Trigger, actor *auction.Actor) (*auction.Auction, error) {
	a, err := im.auctionRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	if a.IsDeleted {
		return nil, domain.ErrNotFound
	}
	if trigger == auction.TriggerAdmin {
		if actor == nil || !actor.CanManage(a) {
			return nil, domain.ErrForbidden
		}
	}
	if a.Status != auction.StatusActive {
		return nil, domain.ErrAlreadyCompleted
	}

	var completed *auction.Auction
	if err := im.query.RunWithTransaction(c, func(c ctx.Ctx) error {
		if err := im.auctionRepo.CompleteIfActive(c, id); err != nil {
			return err
		}
		// re-read inside the transaction so settlement sees the final
		// price and winner
		cur, err := im.auctionRepo.FindOne(c, id)
		if err != nil {
			return err
		}
		if err := im.settlement.OnAuctionCompleted(c, cur); err != nil {
			return err
		}
		completed = cur
		return nil
	}); err != nil {
		if err != domain.ErrAlreadyCompleted {
			c.WithFields(log.Fields{
				"auctionId": id,
				"trigger":   trigger,
				"err":       err,
			}).Error("complete auction transaction failed")
		}
		return nil, err
	}

	im.scheduler.Cancel(c, id)
	c.WithFields(log.Fields{
		"auctionId": id,
		"trigger":   trigger,
		"hasWinner": completed.HasWinner(),
	}).Info("auction completed")
	return completed, nil
}

func (im *impl) SoftDelete(c ctx.Ctx, id auction.Id, actor auction.Actor) error {
	a, err := im.findManageable(c, id, actor)
	if err != nil {
		return err
	}
	if a.Status == auction.StatusActive {
		// cancel first, deleting a live auction silently strands bidders
		return domain.ErrInvalidTransition
	}

	now := time.Now()
	deleted := true
	if err := im.auctionRepo.Patch(c, id, auction.Patchable{
		IsDeleted: &deleted,
		DeletedAt: &now,
		UpdatedAt: &now,
	}); err != nil {
		return err
	}
	im.scheduler.Cancel(c, id)
	return nil
}

func (im *impl) findManageable(c ctx.Ctx, id auction.Id, actor auction.Actor) (*auction.Auction, error) {
	a, err := im.auctionRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	if a.IsDeleted {
		return nil, domain.ErrNotFound
	}
	if !actor.CanManage(a) {
		return nil, domain.ErrForbidden
	}
	return a, nil
}

func (im *impl) patchStatus(c ctx.Ctx, id auction.Id, status auction.Status) error {
	now := time.Now()
	return im.auctionRepo.Patch(c, id, auction.Patchable{
		Status:    &status,
		UpdatedAt: &now,
	})
}
