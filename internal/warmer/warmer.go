// Package warmer runs the periodic idle-session sweep pool.Manager
// documents but never runs on its own: a background cron tick calling
// EvictIdle, so a long-running deployment doesn't carry abandoned
// sessions forever. A robfig/cron scheduler drives one job function,
// started and stopped alongside the process.
package warmer

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"scrollfeed/internal/pool"
)

// Warmer owns the cron scheduler and the pool.Manager it sweeps.
type Warmer struct {
	cron   *cron.Cron
	pool   *pool.Manager
	logger *slog.Logger
}

// New constructs a Warmer from cfg, validating the schedule and
// timezone before returning; a bad cron expression is a startup
// wiring bug, not a runtime condition to recover from.
func New(cfg Config, poolMgr *pool.Manager, logger *slog.Logger) (*Warmer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	w := &Warmer{
		cron:   cron.New(cron.WithLocation(loc)),
		pool:   poolMgr,
		logger: logger,
	}

	if _, err := w.cron.AddFunc(cfg.Schedule, w.sweep); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Warmer) sweep() {
	start := time.Now()
	w.pool.EvictIdle()
	w.logger.Info("warmer: idle session sweep complete", slog.Duration("took", time.Since(start)))
}

// Start begins the cron scheduler in the background. It returns
// immediately; call Stop to drain.
func (w *Warmer) Start() {
	w.logger.Info("warmer: starting idle session sweep schedule")
	w.cron.Start()
}

// Stop halts the scheduler and blocks until any in-flight sweep
// finishes, mirroring cron.Cron's own Stop contract.
func (w *Warmer) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.logger.Info("warmer: idle session sweep schedule stopped")
}
