package links

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/hop/internal/domain"
	"github.com/MrSnakeDoc/hop/internal/index"
	"github.com/MrSnakeDoc/hop/internal/logger"
	"github.com/MrSnakeDoc/hop/internal/syncer"
)

// ErrPersistFailed is returned when a mutation was applied in memory but
// could not be written to the local copy.
var ErrPersistFailed = syncer.ErrPersistFailed

// TitleFetcher looks up a page title for links created without a description
type TitleFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Service applies user mutations to the local link store.
// Every successful mutation is persisted before returning.
type Service struct {
	index  *index.LinkIndex
	saver  *syncer.Saver
	titles TitleFetcher
	logger logger.Logger
	now    func() time.Time
}

// NewService creates a links service. titles may be nil.
func NewService(idx *index.LinkIndex, saver *syncer.Saver, titles TitleFetcher, log logger.Logger) *Service {
	return &Service{
		index:  idx,
		saver:  saver,
		titles: titles,
		logger: log,
		now:    time.Now,
	}
}

// List returns the visible links for query, most recently used first
func (s *Service) List(query string) []domain.Link {
	return domain.Visible(s.index.Snapshot(), query)
}

// Get returns a live link by id
func (s *Service) Get(id string) (domain.Link, error) {
	l, ok := s.index.Get(id)
	if !ok || l.IsDeleted() {
		return domain.Link{}, fmt.Errorf("%w: %s", domain.ErrLinkNotFound, id)
	}
	return l, nil
}

// Create adds a new link. When a live link already has the URL, that link
// is returned with ErrDuplicateURL and nothing is written.
func (s *Service) Create(ctx context.Context, rawURL, description string) (domain.Link, error) {
	link, err := domain.NewLink(rawURL, description, s.now())
	if err != nil {
		return domain.Link{}, err
	}
	if existing, dup := s.index.Snapshot().ActiveByURL(link.URL); dup {
		return existing, fmt.Errorf("%w: %s", domain.ErrDuplicateURL, existing.ID)
	}

	if link.Description == "" && s.titles != nil {
		// Best effort: a missing title never blocks creation
		if title, err := s.titles.Fetch(ctx, link.URL); err != nil {
			s.logger.Debug("title lookup failed",
				logger.String("url", link.URL),
				logger.Error(err))
		} else {
			link.Description = title
		}
	}

	var existing domain.Link
	s.index.Update(func(store *domain.Store) *domain.Store {
		// Rechecked under the lock: the title lookup ran without it
		if l, dup := store.ActiveByURL(link.URL); dup {
			existing, err = l, fmt.Errorf("%w: %s", domain.ErrDuplicateURL, l.ID)
			return nil
		}
		store.Put(link)
		return store
	})
	if err != nil {
		return existing, err
	}

	s.logger.Info("link created",
		logger.String("id", link.ID),
		logger.String("url", link.URL))

	return link, s.persist(ctx)
}

// Edit changes the URL and description of a live link
func (s *Service) Edit(ctx context.Context, id, rawURL, description string) (domain.Link, error) {
	var (
		edited domain.Link
		err    error
	)
	s.index.Update(func(store *domain.Store) *domain.Store {
		current, ok := store.Get(id)
		if !ok || current.IsDeleted() {
			err = fmt.Errorf("%w: %s", domain.ErrLinkNotFound, id)
			return nil
		}
		edited, err = domain.Edit(current, rawURL, description)
		if err != nil {
			return nil
		}
		if other, dup := store.ActiveByURL(edited.URL); dup && other.ID != id {
			err = fmt.Errorf("%w: %s", domain.ErrDuplicateURL, other.ID)
			return nil
		}
		store.Put(edited)
		return store
	})
	if err != nil {
		return domain.Link{}, err
	}

	s.logger.Info("link edited", logger.String("id", id))
	return edited, s.persist(ctx)
}

// Delete tombstones a live link
func (s *Service) Delete(ctx context.Context, id string) error {
	var err error
	s.index.Update(func(store *domain.Store) *domain.Store {
		current, ok := store.Get(id)
		if !ok || current.IsDeleted() {
			err = fmt.Errorf("%w: %s", domain.ErrLinkNotFound, id)
			return nil
		}
		store.Put(domain.MarkDeleted(current, s.now()))
		return store
	})
	if err != nil {
		return err
	}

	s.logger.Info("link deleted", logger.String("id", id))
	return s.persist(ctx)
}

// Access records a selection of link id. An unknown or deleted id is
// ignored and reported through the boolean.
func (s *Service) Access(ctx context.Context, id string) (domain.Link, bool, error) {
	var (
		accessed domain.Link
		found    bool
	)
	s.index.Update(func(store *domain.Store) *domain.Store {
		current, ok := store.Get(id)
		if !ok || current.IsDeleted() {
			return nil
		}
		next := domain.RecordAccess(store, id, s.now())
		accessed, found = next.Get(id)
		return next
	})
	if !found {
		return domain.Link{}, false, nil
	}

	return accessed, true, s.persist(ctx)
}

// JumpResult is the outcome of following a query.
// Several candidates mean the query was ambiguous.
type JumpResult struct {
	Link       domain.Link   // followed link, set when Followed
	Followed   bool          // exactly one live link matched
	Candidates []domain.Link // ranked matches
}

// Jump follows query when it matches exactly one live link and records the
// access atomically. Ambiguous or empty results record nothing.
func (s *Service) Jump(ctx context.Context, query string) (JumpResult, error) {
	var res JumpResult
	s.index.Update(func(store *domain.Store) *domain.Store {
		link, visible, ok := domain.Resolve(store, query)
		res.Candidates = visible
		if !ok {
			return nil
		}
		next := domain.RecordAccess(store, link.ID, s.now())
		res.Link, _ = next.Get(link.ID)
		res.Followed = true
		return next
	})
	if !res.Followed {
		s.logger.Debug("jump not followed",
			logger.String("query", query),
			logger.Int("candidates", len(res.Candidates)))
		return res, nil
	}

	s.logger.Debug("jump resolved",
		logger.String("query", query),
		logger.String("id", res.Link.ID))

	return res, s.persist(ctx)
}

// Import adds links whose ids are unknown, tombstones included.
// Links whose URL is already live are skipped.
func (s *Service) Import(ctx context.Context, links []domain.Link) (int, error) {
	var added int
	s.index.Update(func(store *domain.Store) *domain.Store {
		var next *domain.Store
		next, added = domain.Import(store, links)
		if added == 0 {
			return nil
		}
		return next
	})
	if added == 0 {
		return 0, nil
	}

	s.logger.Info("links imported", logger.Int("count", added))
	return added, s.persist(ctx)
}

func (s *Service) persist(ctx context.Context) error {
	if err := s.saver.Save(ctx); err != nil {
		s.logger.Error("failed to persist links", logger.Error(err))
		return err
	}
	return nil
}
