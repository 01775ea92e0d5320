package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/MrSnakeDoc/hop/internal/domain"
	"github.com/MrSnakeDoc/hop/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// debounce coalesces the burst of events an editor save produces
const debounce = 250 * time.Millisecond

// Importer adds links from an import file
type Importer interface {
	Import(ctx context.Context, links []domain.Link) (int, error)
}

// LoadFunc reads links from a file
type LoadFunc func(path string) ([]domain.Link, error)

// ImportReloader re-imports a links file when it changes on disk and at a
// fixed interval. Importing is idempotent: known ids are skipped.
type ImportReloader struct {
	path     string
	load     LoadFunc
	importer Importer
	logger   logger.Logger
	interval time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	watcher  *fsnotify.Watcher
}

// NewImportReloader creates a new import reloader
func NewImportReloader(
	path string,
	load LoadFunc,
	importer Importer,
	log logger.Logger,
	interval time.Duration,
) *ImportReloader {
	return &ImportReloader{
		path:     filepath.Clean(path),
		load:     load,
		importer: importer,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start imports once, then watches the file.
// The parent directory is watched so that editors replacing the file
// (write to temp, rename) are still seen.
func (ir *ImportReloader) Start(ctx context.Context) error {
	if err := ir.Reload(ctx); err != nil {
		ir.logger.Warn("initial import failed",
			logger.String("file", ir.path),
			logger.Error(err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(ir.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(ir.path), err)
	}
	ir.watcher = watcher

	ir.wg.Add(1)
	go ir.loop(ctx)

	return nil
}

// Stop stops watching and waits for the loop to exit
func (ir *ImportReloader) Stop() {
	ir.stopOnce.Do(func() {
		close(ir.stopCh)
		if ir.watcher != nil {
			_ = ir.watcher.Close()
		}
	})
	ir.wg.Wait()
}

// Reload imports the file once
func (ir *ImportReloader) Reload(ctx context.Context) error {
	links, err := ir.load(ir.path)
	if err != nil {
		return fmt.Errorf("failed to load import file: %w", err)
	}

	added, err := ir.importer.Import(ctx, links)
	if err != nil {
		return fmt.Errorf("failed to import links: %w", err)
	}

	ir.logger.Info("import file processed",
		logger.String("file", ir.path),
		logger.Int("read", len(links)),
		logger.Int("added", added))

	return nil
}

func (ir *ImportReloader) loop(ctx context.Context) {
	defer ir.wg.Done()

	var tick <-chan time.Time
	if ir.interval > 0 {
		ticker := time.NewTicker(ir.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	pending := time.NewTimer(debounce)
	pending.Stop()
	defer pending.Stop()

	for {
		select {
		case event, ok := <-ir.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != ir.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending.Reset(debounce)

		case err, ok := <-ir.watcher.Errors:
			if !ok {
				return
			}
			ir.logger.Warn("import watcher error", logger.Error(err))

		case <-pending.C:
			ir.logger.Info("import file changed", logger.String("file", ir.path))
			ir.reloadLogged(ctx)

		case <-tick:
			ir.reloadLogged(ctx)

		case <-ir.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (ir *ImportReloader) reloadLogged(ctx context.Context) {
	if err := ir.Reload(ctx); err != nil {
		ir.logger.Error("failed to reload import file", logger.Error(err))
	}
}
