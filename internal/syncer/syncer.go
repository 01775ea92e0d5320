package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/hop/internal/domain"
	"github.com/MrSnakeDoc/hop/internal/index"
	"github.com/MrSnakeDoc/hop/internal/logger"
)

var (
	// ErrSyncFailed is returned when the remote copy could not be fetched.
	// Nothing is committed and the last report is left unchanged.
	ErrSyncFailed = errors.New("sync failed")
	// ErrPersistFailed is returned when the local copy could not be written.
	// The in-memory store stays authoritative.
	ErrPersistFailed = errors.New("persist failed")
	// ErrPushFailed is returned when the merged store could not be written
	// back to the remote. The local side is already committed.
	ErrPushFailed = errors.New("push failed")
)

// Remote is the shared copy every device synchronizes against.
type Remote interface {
	Fetch(ctx context.Context) (*domain.Store, error)
	Push(ctx context.Context, store *domain.Store) error
}

// Persistence is the durable local copy.
type Persistence interface {
	LoadLocal(ctx context.Context) (*domain.Store, error)
	SaveLocal(ctx context.Context, store *domain.Store) error
}

// Result describes one sync round.
type Result struct {
	Store   *domain.Store     // merged store, nil when not applied
	Report  domain.DiffReport // what the merge changed
	Applied bool              // false when a newer sync superseded this one
}

// Orchestrator drives fetch, merge, commit, persist and push.
// Overlapping syncs are allowed; only the latest one applies its result.
type Orchestrator struct {
	remote   Remote
	saver    *Saver
	index    *index.LinkIndex
	notifier *Notifier
	logger   logger.Logger
	now      func() time.Time

	generation atomic.Uint64
}

// NewOrchestrator creates a sync orchestrator
func NewOrchestrator(
	remote Remote,
	saver *Saver,
	idx *index.LinkIndex,
	notifier *Notifier,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		remote:   remote,
		saver:    saver,
		index:    idx,
		notifier: notifier,
		logger:   log,
		now:      time.Now,
	}
}

// Sync runs one sync round against the remote.
func (o *Orchestrator) Sync(ctx context.Context) (Result, error) {
	gen := o.generation.Add(1)
	start := time.Now()

	// A new round cancels the previous report display
	o.notifier.Clear()

	o.logger.Debug("sync started", logger.Int64("generation", int64(gen)))

	remote, err := o.remote.Fetch(ctx)
	if err != nil {
		if o.superseded(gen) {
			o.logger.Info("superseded sync failed to fetch, discarding",
				logger.Int64("generation", int64(gen)),
				logger.Error(err))
			return Result{}, nil
		}
		o.logger.Warn("failed to fetch remote links", logger.Error(err))
		return Result{}, fmt.Errorf("%w: fetch remote: %w", ErrSyncFailed, err)
	}

	if o.superseded(gen) {
		o.logger.Info("sync superseded, discarding result",
			logger.Int64("generation", int64(gen)))
		return Result{}, nil
	}

	// Merge against the local store as it is now, not as it was when the
	// fetch started, so edits made meanwhile are reconciled.
	var (
		report domain.DiffReport
		stale  bool
	)
	merged := o.index.Update(func(local *domain.Store) *domain.Store {
		if o.superseded(gen) {
			stale = true
			return nil
		}
		m, r := domain.Merge(local, remote)
		report = r
		return m
	})
	if stale {
		o.logger.Info("sync superseded, discarding result",
			logger.Int64("generation", int64(gen)))
		return Result{}, nil
	}

	o.index.MarkSynced(o.now())
	// The merge is committed either way; only a current round may show it
	if !o.notifier.ShowIf(func() bool { return !o.superseded(gen) }, report) {
		o.logger.Debug("newer sync started, report not shown",
			logger.Int64("generation", int64(gen)))
	}

	res := Result{Store: merged, Report: report, Applied: true}

	o.logger.Info("sync applied",
		logger.Int("new_local", report.NewLocal),
		logger.Int("new_remote", report.NewRemote),
		logger.Int("dropped_local", report.DroppedLocal),
		logger.Int("dropped_remote", report.DroppedRemote),
		logger.Duration("duration", time.Since(start)))

	if err := o.saver.Save(ctx); err != nil {
		o.logger.Error("failed to persist merged links", logger.Error(err))
		return res, err
	}

	// Order is local; only record differences need a push
	if merged.SameRecords(remote) {
		return res, nil
	}

	if err := o.remote.Push(ctx, merged); err != nil {
		o.logger.Warn("failed to push merged links", logger.Error(err))
		return res, fmt.Errorf("%w: %w", ErrPushFailed, err)
	}

	return res, nil
}

// Notifier returns the report notifier fed by this orchestrator
func (o *Orchestrator) Notifier() *Notifier {
	return o.notifier
}

func (o *Orchestrator) superseded(gen uint64) bool {
	return o.generation.Load() != gen
}
