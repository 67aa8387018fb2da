// Package cache decorates catalog repositories with a Redis read-through
// cache. Cached reads return exactly what the wrapped repository would:
// failed loads are never stored, Redis failures are logged and the call
// falls through, and every write invalidates the keys it could affect.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/mvaleed/mjcatalog/internal/result"
)

const (
	keyPrefix = "mjcatalog:cache:"

	// loadTimeout bounds a shared load, which outlives any single caller.
	loadTimeout = 30 * time.Second
)

// Store holds the Redis client shared by the cache decorators.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger

	// mu guards generations and orders fills against invalidations.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewStore creates a cache store. Entries expire after ttl.
func NewStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{client: client, ttl: ttl, logger: logger, generations: make(map[string]uint64)}
}

// readThrough serves key from Redis or loads it with load. Concurrent misses
// for the same key share a single load; each caller still stops waiting when
// its own ctx ends. A load that overlapped an invalidation of key is returned
// but not stored.
func readThrough[T, R any](
	ctx context.Context,
	s *Store,
	key string,
	load func(context.Context) result.Result[T],
	encode func(T) R,
	decode func(R) result.Result[T],
) result.Result[T] {
	if cached, ok := get(ctx, s, key, decode); ok {
		return cached
	}

	ch := s.group.DoChan(key, func() (any, error) {
		gen := s.generation(key)

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		r := load(loadCtx)
		if r.IsSuccess() {
			s.fill(loadCtx, key, gen, encode(r.Value()))
		}
		return r, nil
	})

	select {
	case res := <-ch:
		return res.Val.(result.Result[T])
	case <-ctx.Done():
		return result.Fail[T](result.New(result.LayerInfrastructure, http.StatusServiceUnavailable,
			"request cancelled: "+ctx.Err().Error()))
	}
}

func (s *Store) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[key]
}

// fill stores record under key unless key was invalidated since gen was read.
func (s *Store) fill(ctx context.Context, key string, gen uint64, record any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[key] != gen {
		return
	}
	s.set(ctx, key, record)
}

func get[T, R any](ctx context.Context, s *Store, key string, decode func(R) result.Result[T]) (result.Result[T], bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return result.Result[T]{}, false
	}
	if err != nil {
		s.logger.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		return result.Result[T]{}, false
	}

	var record R
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn("cache entry unreadable", slog.String("key", key), slog.String("error", err.Error()))
		s.invalidate(ctx, key)
		return result.Result[T]{}, false
	}

	r := decode(record)
	if r.IsFailed() {
		s.logger.Warn("cache entry invalid", slog.String("key", key), slog.String("error", r.Err().Error()))
		s.invalidate(ctx, key)
		return result.Result[T]{}, false
	}
	return r, true
}

func (s *Store) set(ctx context.Context, key string, record any) {
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn("cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// invalidate drops keys from Redis. Loads already running for them are not
// stored, and later readers start a fresh load.
func (s *Store) invalidate(ctx context.Context, keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.generations[key]++
		s.group.Forget(key)
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// Ping checks that Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// collectAll rebuilds every record with decode, merging all failures.
func collectAll[T, R any](records []R, decode func(R) result.Result[T]) result.Result[[]T] {
	items := make([]T, 0, len(records))
	var errs []result.Error
	for _, rec := range records {
		r := decode(rec)
		if r.IsFailed() {
			errs = append(errs, r.Errors()...)
			continue
		}
		items = append(items, r.Value())
	}
	if len(errs) > 0 {
		return result.Fail[[]T](errs...)
	}
	return result.Ok(items)
}

func encodeAll[T, R any](items []T, encode func(T) R) []R {
	out := make([]R, len(items))
	for i, item := range items {
		out[i] = encode(item)
	}
	return out
}
