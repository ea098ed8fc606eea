package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/database/mongoclient"
	"github.com/mspark/gemapi/base/log"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/payment"
	"github.com/mspark/gemapi/service/query"
)

type impl struct {
	query query.Mongo
}

func New(query query.Mongo) payment.Repo {
	return &impl{query}
}

func makeQuery(opts ...payment.FindAllOptionsFunc) (bson.M, payment.FindAllOptions, error) {
	opt, err := payment.GetFindAllOptions(opts...)
	if err != nil {
		return nil, opt, err
	}

	q := bson.M{}

	if opt.AuctionId != nil {
		q["auction"] = *opt.AuctionId
	}
	if opt.Type != nil {
		q["paymentType"] = *opt.Type
	}
	if opt.Bidder != nil {
		q["bidder"] = *opt.Bidder
	}
	if opt.Merchant != nil {
		q["merchant"] = *opt.Merchant
	}
	if len(opt.Statuses) > 0 {
		q["paymentStatus"] = bson.M{"$in": opt.Statuses}
	}
	if len(q) == 0 {
		q["_id"] = bson.M{"$exists": true}
	}

	return q, opt, nil
}

func (im *impl) Create(ctx ctx.Ctx, p *payment.Payment) error {
	if err := im.query.Insert(ctx, domain.TablePayments, p); err != nil {
		ctx.WithFields(log.Fields{
			"payment": *p,
			"err":     err,
		}).Error("insert payment failed")
		if err == query.ErrDuplicateKey {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

// ReserveSend claims the auction's single payout slot. The check for a
// still-open send and the insert of the draft are one conditional
// upsert, so two racing callers cannot both pass.
func (im *impl) ReserveSend(ctx ctx.Ctx, p *payment.Payment) error {
	selector := bson.M{
		"auction":       p.AuctionId,
		"paymentType":   payment.TypeSend,
		"paymentStatus": bson.M{"$nin": payment.TerminalFailureStatuses()},
	}
	doc, err := mongoclient.MakeBsonM(p)
	if err != nil {
		ctx.WithFields(log.Fields{
			"payment": *p,
			"err":     err,
		}).Error("MakeBsonM failed")
		return err
	}
	// the selector equalities already seed these paths on insert
	delete(doc, "auction")
	delete(doc, "paymentType")
	update := bson.M{"$setOnInsert": doc}

	if err := im.query.CustomPatch(ctx, domain.TablePayments, selector, update, true); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"auctionId": p.AuctionId,
			"err":       err,
		}).Error("reserve send failed")
		return err
	}

	// matched an open send instead of inserting ours
	if _, err := im.FindOne(ctx, p.Id); err == domain.ErrNotFound {
		return domain.ErrConflict
	} else if err != nil {
		return err
	}
	return nil
}

// MarkRecreating is the recreate CAS. Exactly one caller can move the
// order out of its terminal failure status.
func (im *impl) MarkRecreating(ctx ctx.Ctx, id string) error {
	selector := bson.M{
		"id":            id,
		"paymentType":   payment.TypeOrder,
		"paymentStatus": bson.M{"$in": payment.TerminalFailureStatuses()},
	}
	update := bson.M{
		"$set": bson.M{
			"paymentStatus": payment.StatusDraft,
			"updatedAt":     time.Now(),
		},
	}
	if err := im.query.CustomPatch(ctx, domain.TablePayments, selector, update, false); err == query.ErrNotFound {
		return domain.ErrConflict
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("mark recreating failed")
		return err
	}
	return nil
}

func (im *impl) FindOne(ctx ctx.Ctx, id string) (*payment.Payment, error) {
	q := bson.M{"id": id}
	res := payment.Payment{}
	if err := im.query.FindOne(ctx, domain.TablePayments, q, &res); err == query.ErrNotFound {
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

func (im *impl) FindByGatewayId(ctx ctx.Ctx, gatewayId int64) (*payment.Payment, error) {
	q := bson.M{"gatewayId": gatewayId}
	res := payment.Payment{}
	if err := im.query.FindOne(ctx, domain.TablePayments, q, &res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"gatewayId": gatewayId,
			"err":       err,
		}).Error("failed to FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *impl) FindAll(ctx ctx.Ctx, opts ...payment.FindAllOptionsFunc) ([]*payment.Payment, error) {
	q, opt, err := makeQuery(opts...)
	if err != nil {
		ctx.WithField("err", err).Error("failed to GetFindAllOptions")
		return nil, err
	}

	offset := int(0)
	limit := int(0)
	sort := "-createdAt"

	if opt.Offset != nil {
		offset = int(*opt.Offset)
	}
	if opt.Limit != nil {
		limit = int(*opt.Limit)
	}
	if opt.Sort != nil {
		sort = *opt.Sort
	}

	res := []*payment.Payment{}
	if err := im.query.Search(ctx, domain.TablePayments, offset, limit, sort, q, &res); err != nil {
		ctx.WithFields(log.Fields{
			"query": q,
			"err":   err,
		}).Error("search payments failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Count(ctx ctx.Ctx, opts ...payment.FindAllOptionsFunc) (int, error) {
	q, _, err := makeQuery(opts...)
	if err != nil {
		ctx.WithField("err", err).Error("failed to GetFindAllOptions")
		return 0, err
	}

	cnt, err := im.query.Count(ctx, domain.TablePayments, q)
	if err != nil {
		ctx.WithFields(log.Fields{
			"query": q,
			"err":   err,
		}).Error("count payments failed")
		return 0, err
	}
	return cnt, nil
}

func (im *impl) Patch(ctx ctx.Ctx, id string, p payment.Patchable) error {
	q := bson.M{"id": id}
	updateBson, err := mongoclient.MakeBsonM(p)
	if err != nil {
		ctx.WithFields(log.Fields{
			"patchable": p,
			"err":       err,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.query.Patch(ctx, domain.TablePayments, q, updateBson); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("patch payment failed")
		return err
	}
	return nil
}
