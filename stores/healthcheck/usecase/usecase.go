package usecase

import (
	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/domain/healthcheck"
)

type impl struct {
	repo healthcheck.Repo
}

func New(repo healthcheck.Repo) healthcheck.UseCase {
	return &impl{
		repo: repo,
	}
}

func (im *impl) Check(c ctx.Ctx) error {
	return im.repo.PingDB(c)
}
