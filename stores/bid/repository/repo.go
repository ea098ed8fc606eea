package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/log"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/bid"
	"github.com/mspark/gemapi/service/query"
)

type impl struct {
	query query.Mongo
}

func New(query query.Mongo) bid.Repo {
	return &impl{query}
}

func makeQuery(opts ...bid.FindAllOptionsFunc) (bson.M, bid.FindAllOptions, error) {
	opt, err := bid.GetFindAllOptions(opts...)
	if err != nil {
		return nil, opt, err
	}

	q := bson.M{}

	if opt.AuctionId != nil {
		q["auctionId"] = *opt.AuctionId
	}
	if opt.Bidder != nil {
		q["bidder"] = *opt.Bidder
	}
	if opt.IsDeleted != nil {
		q["isDeleted"] = *opt.IsDeleted
	}
	if len(q) == 0 {
		q["_id"] = bson.M{"$exists": true}
	}

	return q, opt, nil
}

func (im *impl) Create(ctx ctx.Ctx, b *bid.Bid) error {
	if err := im.query.Insert(ctx, domain.TableBids, b); err != nil {
		ctx.WithFields(log.Fields{
			"bid": *b,
			"err": err,
		}).Error("insert bid failed")
		if err == query.ErrDuplicateKey {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (im *impl) FindAll(ctx ctx.Ctx, opts ...bid.FindAllOptionsFunc) ([]*bid.Bid, error) {
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

	res := []*bid.Bid{}
	if err := im.query.Search(ctx, domain.TableBids, offset, limit, sort, q, &res); err != nil {
		ctx.WithFields(log.Fields{
			"query": q,
			"err":   err,
		}).Error("search bids failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Count(ctx ctx.Ctx, opts ...bid.FindAllOptionsFunc) (int, error) {
	q, _, err := makeQuery(opts...)
	if err != nil {
		ctx.WithField("err", err).Error("failed to GetFindAllOptions")
		return 0, err
	}

	cnt, err := im.query.Count(ctx, domain.TableBids, q)
	if err != nil {
		ctx.WithFields(log.Fields{
			"query": q,
			"err":   err,
		}).Error("count bids failed")
		return 0, err
	}
	return cnt, nil
}
