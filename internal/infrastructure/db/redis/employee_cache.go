package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/employee-registry/internal/api/metrics"
	"github.com/99minutos/employee-registry/internal/core/domain"
)

const (
	defaultCacheTTL = 5 * time.Minute
	// tombstoneTTL bounds how long an invalidated id refuses new fills.
	tombstoneTTL = 30 * time.Second
)

// tombstone marks a recently invalidated id. Fills use SET NX, so a reader
// that loaded the record before the mutation cannot write it back.
var tombstone = []byte("-")

// EmployeeCache is a read-through cache of employee records.
// Key format: employee:<id>
type EmployeeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEmployeeCache wraps client. A non-positive ttl falls back to five
// minutes.
func NewEmployeeCache(client *redis.Client, ttl time.Duration) *EmployeeCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &EmployeeCache{client: client, ttl: ttl}
}

// Get returns the cached record for id, or (nil, nil) on a miss.
func (c *EmployeeCache) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheMiss).Inc()
			return nil, nil
		}
		metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheError).Inc()
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if bytes.Equal(raw, tombstone) {
		metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheMiss).Inc()
		return nil, nil
	}

	var e domain.Employee
	if err := e.UnmarshalBinary(raw); err != nil {
		metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheError).Inc()
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheHit).Inc()
	return &e, nil
}

// Set stores e unless the key already holds an entry or a tombstone.
func (c *EmployeeCache) Set(ctx context.Context, e *domain.Employee) error {
	if err := c.client.SetNX(ctx, c.key(e.ID), e, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate replaces any cached entry for id with a short-lived tombstone.
func (c *EmployeeCache) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Set(ctx, c.key(id), tombstone, tombstoneTTL).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (c *EmployeeCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *EmployeeCache) key(id int64) string {
	return fmt.Sprintf("employee:%d", id)
}
