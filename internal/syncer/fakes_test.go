package syncer

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/hop/internal/domain"
)

type fakeRemote struct {
	mu      sync.Mutex
	store   *domain.Store
	fetchFn func(ctx context.Context) (*domain.Store, error)
	pushErr error
	pushes  int
}

func (f *fakeRemote) Fetch(ctx context.Context) (*domain.Store, error) {
	if f.fetchFn != nil {
		return f.fetchFn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.Clone(), nil
}

func (f *fakeRemote) Push(_ context.Context, store *domain.Store) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes++
	f.store = store.Clone()
	return nil
}

type fakePersistence struct {
	mu      sync.Mutex
	store   *domain.Store
	saveErr error
	saves   int
}

func (f *fakePersistence) LoadLocal(context.Context) (*domain.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.Clone(), nil
}

func (f *fakePersistence) SaveLocal(_ context.Context, store *domain.Store) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.store = store.Clone()
	return nil
}
