package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/hop/internal/logger"
)

// Loader reads the durable local copy into memory
type Loader interface {
	Load(ctx context.Context) (int, error)
}

// LocalLoader fills the link index from local persistence on startup
type LocalLoader struct {
	loader Loader
	logger logger.Logger
}

// NewLocalLoader creates a new local loader
func NewLocalLoader(loader Loader, log logger.Logger) *LocalLoader {
	return &LocalLoader{
		loader: loader,
		logger: log,
	}
}

// Load loads the local copy into the index
func (ll *LocalLoader) Load(ctx context.Context) error {
	ll.logger.Info("loading local links")

	count, err := ll.loader.Load(ctx)
	if err != nil {
		return err
	}

	if count == 0 {
		ll.logger.Info("no local links found")
		return nil
	}

	ll.logger.Info("loaded local links", logger.Int("count", count))
	return nil
}
