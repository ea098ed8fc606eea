package scheduler

import (
	"sync"
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/mspark/gemapi/base/backoff"
	bCtx "github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/log"
	"github.com/mspark/gemapi/base/metrics"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/auction"
)

const (
	defaultMaxAttempts        = 3
	defaultRetryDelay         = 5 * time.Second
	defaultStartupConcurrency = 10
)

var timeNow = time.Now

type impl struct {
	repo        auction.Repo
	maxAttempts int
	retryDelay  time.Duration
	startupConc int
	met         metrics.Service

	mu        sync.Mutex
	completer auction.Completer
	timers    map[auction.Id]*time.Timer
	inFlight  map[auction.Id]bool
	stopped   bool
	wg        sync.WaitGroup
}

func New(cfg *Cfg) Service {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.StartupConcurrency == 0 {
		cfg.StartupConcurrency = defaultStartupConcurrency
	}
	return &impl{
		repo:        cfg.AuctionRepo,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		startupConc: cfg.StartupConcurrency,
		met:         metrics.New("scheduler"),
		timers:      map[auction.Id]*time.Timer{},
		inFlight:    map[auction.Id]bool{},
	}
}

func (im *impl) Start(c bCtx.Ctx, completer auction.Completer) error {
	im.mu.Lock()
	im.completer = completer
	im.mu.Unlock()

	auctions, err := im.repo.FindAll(c,
		auction.WithStatus(auction.StatusActive),
		auction.WithIsDeleted(false),
	)
	if err != nil {
		c.WithField("err", err).Error("repo.FindAll failed")
		return err
	}

	now := timeNow()
	overdue := []*auction.Auction{}
	for _, a := range auctions {
		if a.EndTime.After(now) {
			im.Schedule(c, a.Id, a.EndTime)
		} else {
			overdue = append(overdue, a)
		}
	}

	c.WithFields(log.Fields{
		"active":  len(auctions),
		"overdue": len(overdue),
	}).Info("completion schedule loaded")

	if len(overdue) == 0 {
		return nil
	}

	b := goroutines.NewBatch(im.startupConc, goroutines.WithBatchSize(len(overdue)))
	defer b.Close()
	for i := 0; i < len(overdue); i++ {
		id := overdue[i].Id
		b.Queue(func() (interface{}, error) {
			im.fire(id)
			return nil, nil
		})
	}
	b.QueueComplete()
	for ret := range b.Results() {
		if ret.Error() != nil {
			c.WithField("err", ret.Error()).Error("overdue completion error result")
		}
	}
	return nil
}

func (im *impl) Schedule(c bCtx.Ctx, id auction.Id, endTime time.Time) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if im.stopped {
		return
	}

	if t, ok := im.timers[id]; ok {
		t.Stop()
	}

	delay := time.Until(endTime)
	if delay < 0 {
		delay = 0
	}
	im.timers[id] = time.AfterFunc(delay, func() { im.fire(id) })
}

func (im *impl) Cancel(c bCtx.Ctx, id auction.Id) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if t, ok := im.timers[id]; ok {
		t.Stop()
		delete(im.timers, id)
	}
}

func (im *impl) Reschedule(c bCtx.Ctx, id auction.Id) error {
	a, err := im.repo.FindOne(c, id)
	if err != nil {
		c.WithField("err", err).Error("repo.FindOne failed")
		return err
	}
	if a.Status != auction.StatusActive || a.IsDeleted {
		im.Cancel(c, id)
		return nil
	}
	im.Schedule(c, id, a.EndTime)
	return nil
}

func (im *impl) Stop(c bCtx.Ctx) {
	im.mu.Lock()
	im.stopped = true
	for id, t := range im.timers {
		t.Stop()
		delete(im.timers, id)
	}
	im.mu.Unlock()
	im.wg.Wait()
}

// fire runs one completion attempt cycle for the auction. Entry is
// dropped while a previous cycle for the same auction is still running.
func (im *impl) fire(id auction.Id) {
	im.mu.Lock()
	if im.stopped || im.inFlight[id] {
		im.mu.Unlock()
		return
	}
	im.inFlight[id] = true
	delete(im.timers, id)
	completer := im.completer
	im.wg.Add(1)
	im.mu.Unlock()

	defer im.wg.Done()
	defer func() {
		im.mu.Lock()
		delete(im.inFlight, id)
		im.mu.Unlock()
	}()

	c := bCtx.WithValue(bCtx.Background(), "auctionId", id)
	im.met.BumpSum("fire", 1)

	bo := backoff.NewLinear(im.retryDelay, 0)
	for attempt := 1; attempt <= im.maxAttempts; attempt++ {
		_, err := completer.Complete(c, id, auction.TriggerSchedule, nil)
		if err == nil {
			return
		}
		if err == domain.ErrAlreadyCompleted || err == domain.ErrNotFound {
			// completed by a late bid or manually in the meantime
			return
		}

		c.WithFields(log.Fields{
			"attempt": attempt,
			"err":     err,
		}).Warn("completion attempt failed")
		im.met.BumpSum("complete.err", 1)

		if attempt < im.maxAttempts {
			if err := bo.Backoff(c); err != nil {
				return
			}
		}
	}

	c.Error("completion failed after all attempts")
	im.met.BumpSum("complete.terminal", 1)
}
