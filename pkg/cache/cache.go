// Package cache provides a Redis-backed cache for document metadata
// reads. Paged query results are never cached; every page fetch goes
// to the server.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Prometheus metrics for cache operations.
var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nuxeo_cache_hits_total",
		Help: "Total metadata cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nuxeo_cache_misses_total",
		Help: "Total metadata cache misses",
	})

	cacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nuxeo_cache_errors_total",
		Help: "Total metadata cache operation errors",
	}, []string{"operation"})
)

// ErrCacheMiss indicates the requested key was not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// DefaultTTL is the entry lifetime when the caller supplies none. The
// repository sends no freshness headers, so staleness is bounded only
// by this value.
const DefaultTTL = 60 * time.Second

// Store caches raw metadata response bodies in Redis with a fixed TTL.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStore creates a metadata cache with the given TTL. A TTL <= 0
// falls back to DefaultTTL.
func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Key builds a deterministic cache key from its parts.
// Format: nuxeo:part1:part2:...
func Key(parts ...string) string {
	return "nuxeo:" + strings.Join(parts, ":")
}

// Get retrieves a cached body. Returns ErrCacheMiss if the key does
// not exist or has expired.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			cacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	cacheHits.Inc()
	return data, nil
}

// Set stores a body under key with the store's TTL.
func (s *Store) Set(ctx context.Context, key string, data []byte) error {
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a cached body. Used to invalidate after a write.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		cacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
