package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/hop/internal/logger"
	"github.com/MrSnakeDoc/hop/internal/syncer"
)

// Syncer runs one sync round
type Syncer interface {
	Sync(ctx context.Context) (syncer.Result, error)
}

// SyncScheduler runs syncs periodically and on demand
type SyncScheduler struct {
	syncer        Syncer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSyncScheduler creates a new sync scheduler.
// manualTrigger is shared with the HTTP layer; a zero interval disables
// periodic syncs.
func NewSyncScheduler(
	s Syncer,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SyncScheduler {
	return &SyncScheduler{
		syncer:        s,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs a first sync and then begins the periodic loop.
// A failing first sync is logged, not returned: hop works offline.
func (ss *SyncScheduler) Start(ctx context.Context) {
	ss.run(ctx, "startup")

	var tick <-chan time.Time
	if ss.interval > 0 {
		ticker := time.NewTicker(ss.interval)
		tick = ticker.C
		go func() {
			<-ss.stopCh
			ticker.Stop()
		}()
	}

	go func() {
		for {
			select {
			case <-tick:
				ss.run(ctx, "periodic")
			case <-ss.manualTrigger:
				ss.logger.Info("manual sync triggered")
				ss.run(ctx, "manual")
			case <-ss.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the scheduler
func (ss *SyncScheduler) Stop() {
	close(ss.stopCh)
}

func (ss *SyncScheduler) run(ctx context.Context, reason string) {
	res, err := ss.syncer.Sync(ctx)
	switch {
	case errors.Is(err, syncer.ErrSyncFailed):
		ss.logger.Warn("sync failed, keeping local copy",
			logger.String("reason", reason),
			logger.Error(err))
	case err != nil:
		ss.logger.Error("sync incomplete",
			logger.String("reason", reason),
			logger.Error(err))
	case !res.Applied:
		ss.logger.Debug("sync superseded", logger.String("reason", reason))
	}
}

// TriggerSync requests a sync without blocking. It reports false when a
// request is already pending.
func TriggerSync(trigger chan<- struct{}) bool {
	select {
	case trigger <- struct{}{}:
		return true
	default:
		return false
	}
}
