package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/log"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/account"
	"github.com/mspark/gemapi/service/query"
)

type impl struct {
	query query.Mongo
}

func New(query query.Mongo) account.Repo {
	return &impl{query}
}

func (im *impl) FindOne(ctx ctx.Ctx, id domain.UserId) (*account.Account, error) {
	q := bson.M{"id": id}
	res := account.Account{}
	if err := im.query.FindOne(ctx, domain.TableAccounts, q, &res); err == query.ErrNotFound {
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

func (im *impl) Create(ctx ctx.Ctx, a *account.Account) error {
	if err := im.query.Insert(ctx, domain.TableAccounts, a); err != nil {
		ctx.WithFields(log.Fields{
			"account": *a,
			"err":     err,
		}).Error("insert account failed")
		if err == query.ErrDuplicateKey {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}
