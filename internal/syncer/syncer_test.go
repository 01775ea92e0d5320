package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/hop/internal/domain"
	"github.com/MrSnakeDoc/hop/internal/index"
	"github.com/MrSnakeDoc/hop/internal/logger"
)

func at(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func ptr(t time.Time) *time.Time {
	return &t
}

func newTestOrchestrator(local *domain.Store, remote *fakeRemote, persist *fakePersistence) (*Orchestrator, *index.LinkIndex) {
	idx := index.NewLinkIndex()
	idx.Replace(local)
	o := NewOrchestrator(remote, NewSaver(idx, persist), idx, NewNotifier(0), logger.NewNop())
	return o, idx
}

func TestSync_AppliesMerge(t *testing.T) {
	local := domain.NewStore(domain.Link{ID: "1", URL: "a.com", CreatedAt: at(10)})
	remote := &fakeRemote{store: domain.NewStore(
		domain.Link{ID: "1", URL: "a.com", CreatedAt: at(10), DeletedAt: ptr(at(20))},
	)}
	persist := &fakePersistence{}

	o, idx := newTestOrchestrator(local, remote, persist)

	res, err := o.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !res.Applied {
		t.Fatal("Sync() should apply")
	}

	want := domain.DiffReport{DroppedLocal: 1}
	if res.Report != want {
		t.Errorf("report = %+v, want %+v", res.Report, want)
	}
	if l, _ := idx.Get("1"); !l.IsDeleted() {
		t.Error("remote tombstone should be committed to the index")
	}
	if persist.saves != 1 {
		t.Errorf("saves = %d, want 1", persist.saves)
	}
	if remote.pushes != 0 {
		t.Errorf("pushes = %d, want 0 (remote already up to date)", remote.pushes)
	}
	if idx.LastSync().IsZero() {
		t.Error("LastSync() should be set")
	}
	if got, ok := o.Notifier().Current(); !ok || got != want {
		t.Errorf("Notifier().Current() = %+v, %v; want %+v, true", got, ok, want)
	}
}

func TestSync_PushesLocalChanges(t *testing.T) {
	local := domain.NewStore(domain.Link{ID: "l", URL: "local.com", CreatedAt: at(10)})
	remote := &fakeRemote{store: domain.NewStore()}
	persist := &fakePersistence{}

	o, _ := newTestOrchestrator(local, remote, persist)

	res, err := o.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if res.Report.NewLocal != 1 {
		t.Errorf("NewLocal = %d, want 1", res.Report.NewLocal)
	}
	if remote.pushes != 1 {
		t.Fatalf("pushes = %d, want 1", remote.pushes)
	}
	if _, ok := remote.store.Get("l"); !ok {
		t.Error("local link should be pushed to remote")
	}
}

func TestSync_FetchFailure(t *testing.T) {
	local := domain.NewStore(domain.Link{ID: "1", URL: "a.com", CreatedAt: at(10)})
	persist := &fakePersistence{}

	// First a successful round to populate the last report
	ok := &fakeRemote{store: domain.NewStore(domain.Link{ID: "r", URL: "r.com", CreatedAt: at(5)})}
	o, idx := newTestOrchestrator(local, ok, persist)
	if _, err := o.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	before, _ := o.Notifier().Last()
	snapshot := idx.Snapshot()

	o.remote = &fakeRemote{fetchFn: func(context.Context) (*domain.Store, error) {
		return nil, errors.New("connection refused")
	}}

	res, err := o.Sync(context.Background())
	if !errors.Is(err, ErrSyncFailed) {
		t.Fatalf("Sync() error = %v, want ErrSyncFailed", err)
	}
	if res.Applied {
		t.Error("failed sync should not apply")
	}
	if !idx.Snapshot().Equal(snapshot) {
		t.Error("failed sync should not change the local store")
	}
	if after, _ := o.Notifier().Last(); after != before {
		t.Errorf("Last() = %+v, want unchanged %+v", after, before)
	}
	if persist.saves != 1 {
		t.Errorf("saves = %d, want 1", persist.saves)
	}
}

func TestSync_PersistFailure(t *testing.T) {
	local := domain.NewStore()
	remote := &fakeRemote{store: domain.NewStore(domain.Link{ID: "r", URL: "r.com", CreatedAt: at(10)})}
	persist := &fakePersistence{saveErr: errors.New("disk full")}

	o, idx := newTestOrchestrator(local, remote, persist)

	res, err := o.Sync(context.Background())
	if !errors.Is(err, ErrPersistFailed) {
		t.Fatalf("Sync() error = %v, want ErrPersistFailed", err)
	}
	if !res.Applied {
		t.Error("merge should still be applied in memory")
	}
	if _, ok := idx.Get("r"); !ok {
		t.Error("in-memory state should stay authoritative")
	}
}

func TestSync_PushFailure(t *testing.T) {
	local := domain.NewStore(domain.Link{ID: "l", URL: "l.com", CreatedAt: at(10)})
	remote := &fakeRemote{store: domain.NewStore(), pushErr: errors.New("read only")}
	persist := &fakePersistence{}

	o, _ := newTestOrchestrator(local, remote, persist)

	res, err := o.Sync(context.Background())
	if !errors.Is(err, ErrPushFailed) {
		t.Fatalf("Sync() error = %v, want ErrPushFailed", err)
	}
	if !res.Applied || persist.saves != 1 {
		t.Error("local commit should happen before the push")
	}
}

func TestSync_Superseded(t *testing.T) {
	local := domain.NewStore()
	persist := &fakePersistence{}

	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0
	remote := &fakeRemote{}
	remote.fetchFn = func(ctx context.Context) (*domain.Store, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			return domain.NewStore(domain.Link{ID: "old", URL: "old.com", CreatedAt: at(10)}), nil
		}
		return domain.NewStore(domain.Link{ID: "new", URL: "new.com", CreatedAt: at(20)}), nil
	}

	o, idx := newTestOrchestrator(local, remote, persist)

	type outcome struct {
		res Result
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := o.Sync(context.Background())
		first <- outcome{res, err}
	}()

	<-started
	second, err := o.Sync(context.Background())
	if err != nil || !second.Applied {
		t.Fatalf("second Sync() = %+v, %v; want applied", second, err)
	}

	close(release)
	got := <-first
	if got.err != nil {
		t.Errorf("superseded Sync() error = %v, want nil", got.err)
	}
	if got.res.Applied {
		t.Error("superseded Sync() should be discarded")
	}
	if _, ok := idx.Get("old"); ok {
		t.Error("superseded result leaked into the index")
	}
	if _, ok := idx.Get("new"); !ok {
		t.Error("latest result should be applied")
	}
}

func TestSync_MergesAgainstCurrentLocal(t *testing.T) {
	local := domain.NewStore()
	persist := &fakePersistence{}

	var idx *index.LinkIndex
	remote := &fakeRemote{}
	remote.fetchFn = func(context.Context) (*domain.Store, error) {
		// A user edit lands while the fetch is in flight
		idx.Update(func(s *domain.Store) *domain.Store {
			s.Put(domain.Link{ID: "edit", URL: "edit.com", CreatedAt: at(30)})
			return s
		})
		return domain.NewStore(domain.Link{ID: "r", URL: "r.com", CreatedAt: at(10)}), nil
	}

	var o *Orchestrator
	o, idx = newTestOrchestrator(local, remote, persist)

	res, err := o.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if _, ok := res.Store.Get("edit"); !ok {
		t.Error("edit made during fetch was lost")
	}
	if res.Report.NewLocal != 1 || res.Report.NewRemote != 1 {
		t.Errorf("report = %+v, want 1 new on each side", res.Report)
	}
}

func TestSync_ClearsPreviousReport(t *testing.T) {
	local := domain.NewStore()
	remote := &fakeRemote{store: domain.NewStore(domain.Link{ID: "r", URL: "r.com", CreatedAt: at(10)})}
	o, _ := newTestOrchestrator(local, remote, &fakePersistence{})

	if _, err := o.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if _, ok := o.Notifier().Current(); !ok {
		t.Fatal("report should be showing after sync")
	}

	o.remote = &fakeRemote{fetchFn: func(context.Context) (*domain.Store, error) {
		return nil, errors.New("offline")
	}}
	_, _ = o.Sync(context.Background())

	if _, ok := o.Notifier().Current(); ok {
		t.Error("starting a sync should clear the displayed report")
	}
}

func TestSync_SupersededFetchFailure(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0
	remote := &fakeRemote{}
	remote.fetchFn = func(ctx context.Context) (*domain.Store, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			return nil, errors.New("connection reset")
		}
		return domain.NewStore(), nil
	}

	o, _ := newTestOrchestrator(domain.NewStore(), remote, &fakePersistence{})

	type outcome struct {
		res Result
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := o.Sync(context.Background())
		first <- outcome{res, err}
	}()

	<-started
	if _, err := o.Sync(context.Background()); err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}

	close(release)
	got := <-first
	if got.err != nil {
		t.Errorf("superseded Sync() error = %v, want nil", got.err)
	}
	if got.res.Applied {
		t.Error("superseded Sync() should not be applied")
	}
}

func TestSync_SupersededAfterMergeHidesReport(t *testing.T) {
	remote := &fakeRemote{store: domain.NewStore(domain.Link{ID: "r", URL: "r.com", CreatedAt: at(10)})}
	o, idx := newTestOrchestrator(domain.NewStore(), remote, &fakePersistence{})

	// A newer round starts right after the merge is committed
	o.now = func() time.Time {
		o.generation.Add(1)
		o.notifier.Clear()
		return at(100)
	}

	res, err := o.Sync(context.Background())
	if err != nil || !res.Applied {
		t.Fatalf("Sync() = %+v, %v; want applied", res, err)
	}
	if _, ok := idx.Get("r"); !ok {
		t.Error("committed merge should stay in the index")
	}
	if report, ok := o.Notifier().Current(); ok {
		t.Errorf("stale report %+v shown while a newer sync is running", report)
	}
}
