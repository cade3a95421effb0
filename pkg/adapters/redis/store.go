// Package redis provides a Redis-backed run store for shared or durable
// deployments.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/statesim/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.RunStore using Redis. Runs are stored as JSON
// values with a ZSET index scored by creation time, so listing newest
// first is a single range query.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored runs.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for runs.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "statesim:run:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the run to Redis.
func (s *Store) Save(ctx context.Context, run domain.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(run.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(run.CreatedAt.UnixNano()),
		Member: run.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a run from Redis.
func (s *Store) Load(ctx context.Context, id string) (domain.Run, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return domain.Run{}, domain.ErrRunNotFound
		}
		return domain.Run{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var run domain.Run
	if err := json.Unmarshal([]byte(val), &run); err != nil {
		return domain.Run{}, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return run, nil
}

// Delete removes the run and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns runs newest first, walking the ZSET index. Index entries
// whose value has expired (TTL) are pruned lazily.
func (s *Store) List(ctx context.Context) ([]domain.Run, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]domain.Run, 0, len(ids))
	for _, id := range ids {
		run, err := s.Load(ctx, id)
		if err != nil {
			if err == domain.ErrRunNotFound {
				// Value expired but index entry survived; prune it.
				_ = s.client.ZRem(ctx, s.indexKey(), id).Err()
				continue
			}
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
