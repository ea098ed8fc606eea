package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/database/mongoclient"
	"github.com/mspark/gemapi/domain/healthcheck"
)

type impl struct {
	mgoClient *mongoclient.Client
}

func New(mgoClient *mongoclient.Client) healthcheck.Repo {
	return &impl{
		mgoClient: mgoClient,
	}
}

func (im *impl) PingDB(c ctx.Ctx) error {
	pingCtx, cancel := ctx.WithTimeout(c, 2*time.Second)
	defer cancel()
	if err := im.mgoClient.Ping(pingCtx, readpref.Primary()); err != nil {
		c.WithField("err", err).Error("ping mongo error")
		return err
	}
	return nil
}
