/*
scheduler.go - Automated period rollover

PURPOSE:
  Periods are calendar months. A server left running across midnight at
  the end of a month would keep writing into the old period; the scheduler
  notices the month change and swaps in the new period's session.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each check calls Handler.Rollover, which is a no-op within a month
  - The new session starts locked and loads (or creates) its own record

USAGE:
  scheduler := NewRolloverScheduler(handler, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Handler.Rollover
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RolloverScheduler periodically moves the handler to the current month.
type RolloverScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	log    *zap.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRolloverScheduler creates a new scheduler.
func NewRolloverScheduler(handler *Handler, log *zap.Logger) *RolloverScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RolloverScheduler{
		Handler:       handler,
		CheckInterval: time.Minute,
		Enabled:       true,
		log:           log.Named("scheduler"),
	}
}

// Start begins the scheduler.
func (rs *RolloverScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.log.Info("disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)

	go rs.run(rs.ticker.C, rs.stop)

	rs.log.Info("started", zap.Duration("interval", rs.CheckInterval))
}

// Stop stops the scheduler and waits for a running check to finish.
func (rs *RolloverScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		rs.log.Info("stopped")
	}
}

func (rs *RolloverScheduler) run(tick <-chan time.Time, stop <-chan struct{}) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.RunNow(context.Background())

	for {
		select {
		case <-tick:
			rs.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow performs one check and reports whether the period changed.
func (rs *RolloverScheduler) RunNow(ctx context.Context) bool {
	rolled, err := rs.Handler.Rollover(ctx)
	if err != nil {
		rs.log.Error("rollover failed", zap.Error(err))
		return false
	}
	if rolled {
		rs.log.Info("now tracking new period", zap.String("period", string(rs.Handler.Period())))
	}
	return rolled
}
