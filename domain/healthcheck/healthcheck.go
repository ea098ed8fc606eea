package healthcheck

import (
	"github.com/mspark/gemapi/base/ctx"
)

type Repo interface {
	PingDB(c ctx.Ctx) error
}

type UseCase interface {
	Check(c ctx.Ctx) error
}
