package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/MrSnakeDoc/hop/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Store is the shared remote copy of the link store.
// Links are kept forever (no TTL): tombstones must outlive every replica.
type Store struct {
	client *redis.Client
}

// Stats summarizes the remote copy
type Stats struct {
	Links      int `json:"links"`
	Tombstones int `json:"tombstones"`
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Fetch retrieves the full remote store.
// Entries that vanished or cannot be decoded are skipped. Links are ordered
// by creation time, then ID, so every device sees the same order.
func (s *Store) Fetch(ctx context.Context) (*domain.Store, error) {
	ids, err := s.client.SMembers(ctx, AllLinksKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get link IDs: %w", err)
	}

	if len(ids) == 0 {
		return domain.NewStore(), nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = LinkKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get links: %w", err)
	}

	links := make([]domain.Link, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Key missing
			continue
		}
		var link domain.Link
		if err := json.Unmarshal([]byte(raw), &link); err != nil || link.ID == "" {
			continue
		}
		links = append(links, link)
	}

	sort.SliceStable(links, func(i, j int) bool {
		if !links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].CreatedAt.Before(links[j].CreatedAt)
		}
		return links[i].ID < links[j].ID
	})

	return domain.NewStore(links...), nil
}

// Push writes every link of store to Redis (bulk operation).
// Links absent from store are left untouched: removal only happens through
// tombstones.
func (s *Store) Push(ctx context.Context, store *domain.Store) error {
	links := store.Links()
	if len(links) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()

	for _, link := range links {
		data, err := json.Marshal(link)
		if err != nil {
			return fmt.Errorf("failed to marshal link %s: %w", link.ID, err)
		}

		pipe.Set(ctx, LinkKey(link.ID), data, 0)
		pipe.SAdd(ctx, AllLinksKey(), link.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push links: %w", err)
	}

	return nil
}

// Stats counts live links and tombstones in the remote copy
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	store, err := s.Fetch(ctx)
	if err != nil {
		return Stats{}, err
	}
	active := store.ActiveCount()
	return Stats{Links: active, Tombstones: store.Len() - active}, nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
