package syncer

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/hop/internal/index"
)

// Saver writes the latest index state to the local persistence.
// Saves are serialized and always read the index after acquiring the lock,
// so a slow save can never overwrite a newer one.
type Saver struct {
	mu      sync.Mutex
	index   *index.LinkIndex
	persist Persistence
}

// NewSaver creates a saver for idx
func NewSaver(idx *index.LinkIndex, persist Persistence) *Saver {
	return &Saver{
		index:   idx,
		persist: persist,
	}
}

// Save persists the current index state
func (s *Saver) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist.SaveLocal(ctx, s.index.Snapshot()); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return nil
}

// Load reads the local copy into the index (startup)
func (s *Saver) Load(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.persist.LoadLocal(ctx)
	if err != nil {
		return 0, fmt.Errorf("load local links: %w", err)
	}
	s.index.Replace(store)
	return store.Len(), nil
}
