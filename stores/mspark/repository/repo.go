package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/log"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/mspark"
	"github.com/mspark/gemapi/service/query"
)

type impl struct {
	query query.Mongo
}

func New(query query.Mongo) mspark.Repo {
	return &impl{query}
}

func (im *impl) FindPrimary(ctx ctx.Ctx) (*mspark.Mspark, error) {
	q := bson.M{"type": mspark.TypePrimary}
	res := mspark.Mspark{}
	if err := im.query.FindOne(ctx, domain.TableMsparks, q, &res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithField("err", err).Error("failed to FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *impl) Create(ctx ctx.Ctx, m *mspark.Mspark) error {
	if err := im.query.Insert(ctx, domain.TableMsparks, m); err != nil {
		ctx.WithFields(log.Fields{
			"mspark": *m,
			"err":    err,
		}).Error("insert mspark failed")
		if err == query.ErrDuplicateKey {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}
