package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/database/mongoclient"
	"github.com/mspark/gemapi/base/log"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/gem"
	"github.com/mspark/gemapi/service/query"
)

type impl struct {
	query query.Mongo
}

func New(query query.Mongo) gem.Repo {
	return &impl{query}
}

func (im *impl) FindOne(ctx ctx.Ctx, id gem.Id) (*gem.Gem, error) {
	q := bson.M{"id": id}
	res := gem.Gem{}
	if err := im.query.FindOne(ctx, domain.TableGems, q, &res); err == query.ErrNotFound {
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

func (im *impl) Create(ctx ctx.Ctx, g *gem.Gem) error {
	if err := im.query.Insert(ctx, domain.TableGems, g); err != nil {
		ctx.WithFields(log.Fields{
			"gem": *g,
			"err": err,
		}).Error("insert gem failed")
		if err == query.ErrDuplicateKey {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (im *impl) Patch(ctx ctx.Ctx, id gem.Id, p gem.Patchable) error {
	q := bson.M{"id": id}
	updateBson, err := mongoclient.MakeBsonM(p)
	if err != nil {
		ctx.WithFields(log.Fields{
			"patchable": p,
			"err":       err,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.query.Patch(ctx, domain.TableGems, q, updateBson); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("patch gem failed")
		return err
	}
	return nil
}
