package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/database/mongoclient"
	"github.com/mspark/gemapi/base/log"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/auction"
	"github.com/mspark/gemapi/service/query"
)

type impl struct {
	query query.Mongo
}

func New(query query.Mongo) auction.Repo {
	return &impl{query}
}

func makeQuery(opts ...auction.FindAllOptionsFunc) (bson.M, auction.FindAllOptions, error) {
	opt, err := auction.GetFindAllOptions(opts...)
	if err != nil {
		return nil, opt, err
	}

	q := bson.M{}

	if opt.Status != nil {
		q["status"] = *opt.Status
	}
	if opt.GemId != nil {
		q["gemId"] = *opt.GemId
	}
	if opt.MerchantId != nil {
		q["merchantId"] = *opt.MerchantId
	}
	if opt.IsDeleted != nil {
		q["isDeleted"] = *opt.IsDeleted
	}
	if opt.EndTimeLT != nil {
		q["endTime"] = bson.M{"$lt": *opt.EndTimeLT}
	}
	if len(q) == 0 {
		q["_id"] = bson.M{"$exists": true}
	}

	return q, opt, nil
}

func (im *impl) FindOne(ctx ctx.Ctx, id auction.Id) (*auction.Auction, error) {
	q := bson.M{"id": id}
	res := auction.Auction{}
	if err := im.query.FindOne(ctx, domain.TableAuctions, q, &res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("failed to FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *impl) FindAll(ctx ctx.Ctx, opts ...auction.FindAllOptionsFunc) ([]*auction.Auction, error) {
	q, opt, err := makeQuery(opts...)
	if err != nil {
		ctx.WithField("err", err).Error("failed to GetFindAllOptions")
		return nil, err
	}

	offset := int(0)
	limit := int(0)
	sort := "_id"

	if opt.Offset != nil {
		offset = int(*opt.Offset)
	}
	if opt.Limit != nil {
		limit = int(*opt.Limit)
	}
	if opt.Sort != nil {
		sort = *opt.Sort
	}

	res := []*auction.Auction{}
	if err := im.query.Search(ctx, domain.TableAuctions, offset, limit, sort, q, &res); err != nil {
		ctx.WithFields(log.Fields{
			"query": q,
			"err":   err,
		}).Error("search auctions failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Count(ctx ctx.Ctx, opts ...auction.FindAllOptionsFunc) (int, error) {
	q, _, err := makeQuery(opts...)
	if err != nil {
		ctx.WithField("err", err).Error("failed to GetFindAllOptions")
		return 0, err
	}

	cnt, err := im.query.Count(ctx, domain.TableAuctions, q)
	if err != nil {
		ctx.WithFields(log.Fields{
			"query": q,
			"err":   err,
		}).Error("count auctions failed")
		return 0, err
	}
	return cnt, nil
}

func (im *impl) Create(ctx ctx.Ctx, a *auction.Auction) error {
	if err := im.query.Insert(ctx, domain.TableAuctions, a); err != nil {
		ctx.WithFields(log.Fields{
			"auction": *a,
			"err":     err,
		}).Error("insert auction failed")
		if err == query.ErrDuplicateKey {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (im *impl) Patch(ctx ctx.Ctx, id auction.Id, p auction.Patchable) error {
	q := bson.M{"id": id}
	updateBson, err := mongoclient.MakeBsonM(p)
	if err != nil {
		ctx.WithFields(log.Fields{
			"patchable": p,
			"err":       err,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.query.Patch(ctx, domain.TableAuctions, q, updateBson); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("patch auction failed")
		return err
	}
	return nil
}

// AcceptBid commits a bid with one conditional update so concurrent
// bidders serialize on the auction document. The selector only matches
// while the auction is active, not deleted and still priced below the
// bid.
func (im *impl) AcceptBid(ctx ctx.Ctx, id auction.Id, bidId string, bidder domain.UserId, amount float64) error {
	selector := bson.M{
		"id":           id,
		"status":       auction.StatusActive,
		"isDeleted":    false,
		"currentPrice": bson.M{"$lt": amount},
	}
	update := bson.M{
		"$set": bson.M{
			"currentPrice":    amount,
			"highestBidderId": bidder,
			"updatedAt":       time.Now(),
		},
		"$push": bson.M{"bids": bidId},
	}
	if err := im.query.CustomPatch(ctx, domain.TableAuctions, selector, update, false); err == query.ErrNotFound {
		return domain.ErrBidTooLow
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"id":     id,
			"bidId":  bidId,
			"amount": amount,
			"err":    err,
		}).Error("accept bid failed")
		return err
	}
	return nil
}

// CompleteIfActive is the completion CAS. Exactly one caller can move
// the auction out of active.
func (im *impl) CompleteIfActive(ctx ctx.Ctx, id auction.Id) error {
	selector := bson.M{
		"id":        id,
		"status":    auction.StatusActive,
		"isDeleted": false,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    auction.StatusCompleted,
			"updatedAt": time.Now(),
		},
	}
	if err := im.query.CustomPatch(ctx, domain.TableAuctions, selector, update, false); err == query.ErrNotFound {
		return domain.ErrAlreadyCompleted
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("complete auction failed")
		return err
	}
	return nil
}
