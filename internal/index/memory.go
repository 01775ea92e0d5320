package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/hop/internal/domain"
)

// LinkIndex holds the single authoritative in-memory link store.
// Every mutation goes through it so that user edits and sync merges are
// serialized; readers get immutable snapshots.
type LinkIndex struct {
	mu       sync.RWMutex
	store    *domain.Store
	lastSync time.Time // Timestamp of last applied sync
	loaded   bool      // Set once the local copy has been loaded
}

// NewLinkIndex creates an empty index
func NewLinkIndex() *LinkIndex {
	return &LinkIndex{
		store: domain.NewStore(),
	}
}

// Snapshot returns a copy of the current store, safe to read without locking
func (idx *LinkIndex) Snapshot() *domain.Store {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.store.Clone()
}

// Update applies fn to the current store under the write lock and installs
// the store it returns. fn must not retain its argument.
// It returns the installed store.
func (idx *LinkIndex) Update(fn func(*domain.Store) *domain.Store) *domain.Store {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	next := fn(idx.store.Clone())
	if next == nil {
		return idx.store.Clone()
	}
	idx.store = next
	return next.Clone()
}

// Replace installs store as the local copy (startup load)
func (idx *LinkIndex) Replace(store *domain.Store) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.store = store.Clone()
	idx.loaded = true
}

// MarkSynced records the time of the last applied sync
func (idx *LinkIndex) MarkSynced(at time.Time) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.lastSync = at
}

// Get retrieves a link by ID, tombstones included
func (idx *LinkIndex) Get(id string) (domain.Link, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.store.Get(id)
}

// Count returns the number of active links
func (idx *LinkIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.store.ActiveCount()
}

// Loaded reports whether the local copy has been loaded
func (idx *LinkIndex) Loaded() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.loaded
}

// LastSync returns the timestamp of the last applied sync
func (idx *LinkIndex) LastSync() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastSync
}
