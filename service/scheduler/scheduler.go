package scheduler

import (
	"time"

	bCtx "github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/domain/auction"
)

// Service drives auction completion at endTime. It keeps one pending
// timer per auction and hands expired auctions to the injected
// Completer with a bounded retry budget.
type Service interface {
	auction.Scheduler

	// Start loads all active auctions, completes the overdue ones and
	// installs timers for the rest. It must be called exactly once,
	// before any Schedule/Cancel call.
	Start(c bCtx.Ctx, completer auction.Completer) error

	// Reschedule re-reads the auction and re-installs its timer. Used by
	// ops endpoints after manual fixes.
	Reschedule(c bCtx.Ctx, id auction.Id) error

	// Stop cancels all pending timers and waits for in-flight
	// completions to finish.
	Stop(c bCtx.Ctx)
}

type Cfg struct {
	AuctionRepo auction.Repo

	// MaxAttempts bounds completion retries per firing. Zero means the
	// default of 3.
	MaxAttempts int

	// RetryDelay is the linear backoff base. Zero means the default of
	// 5 seconds.
	RetryDelay time.Duration

	// StartupConcurrency bounds how many overdue auctions are completed
	// in parallel during Start. Zero means the default of 10.
	StartupConcurrency int
}
