package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/sequoia/pkg/metrics"
	"github.com/Ramsey-B/sequoia/pkg/models"
	"github.com/Ramsey-B/sequoia/pkg/tracing"
	"github.com/redis/go-redis/v9"
)

// AnalyticsCache caches computed vendor analytics documents. The cached
// document is an advisory snapshot; expiry or invalidation always falls
// back to recomputing from the batch ledger. A zero TTL disables the
// cache entirely.
type AnalyticsCache struct {
	client *Client
	logger ectologger.Logger
	ttl    time.Duration
}

// NewAnalyticsCache creates a new analytics cache with the given TTL
func NewAnalyticsCache(client *Client, ttl time.Duration, logger ectologger.Logger) *AnalyticsCache {
	return &AnalyticsCache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Enabled reports whether caching is active
func (c *AnalyticsCache) Enabled() bool {
	return c.client != nil && c.ttl > 0
}

// Get returns the cached analytics document for a vendor, or nil on a miss
func (c *AnalyticsCache) Get(ctx context.Context, vendorID string) (*models.VendorAnalytics, error) {
	if !c.Enabled() {
		return nil, nil
	}

	ctx, span := tracing.StartSpan(ctx, "redis.AnalyticsCache.Get")
	defer span.End()

	raw, err := c.client.rdb.Get(ctx, analyticsKey(vendorID)).Result()
	if err == redis.Nil {
		metrics.AnalyticsCacheMisses.Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analytics cache: %w", err)
	}

	var analytics models.VendorAnalytics
	if err := json.Unmarshal([]byte(raw), &analytics); err != nil {
		// Treat a corrupt entry as a miss and drop it
		c.logger.WithContext(ctx).WithError(err).Warn("Discarding corrupt analytics cache entry")
		_ = c.client.rdb.Del(ctx, analyticsKey(vendorID)).Err()
		metrics.AnalyticsCacheMisses.Inc()
		return nil, nil
	}

	metrics.AnalyticsCacheHits.Inc()
	return &analytics, nil
}

// Set stores a computed analytics document for a vendor
func (c *AnalyticsCache) Set(ctx context.Context, vendorID string, analytics *models.VendorAnalytics) error {
	if !c.Enabled() {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "redis.AnalyticsCache.Set")
	defer span.End()

	payload, err := json.Marshal(analytics)
	if err != nil {
		return fmt.Errorf("failed to encode analytics document: %w", err)
	}

	if err := c.client.rdb.Set(ctx, analyticsKey(vendorID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write analytics cache: %w", err)
	}

	return nil
}

// Invalidate drops the cached document for a vendor. Called after a
// failure report so the next analytics read recomputes.
func (c *AnalyticsCache) Invalidate(ctx context.Context, vendorID string) error {
	if !c.Enabled() {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "redis.AnalyticsCache.Invalidate")
	defer span.End()

	if err := c.client.rdb.Del(ctx, analyticsKey(vendorID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate analytics cache: %w", err)
	}

	return nil
}

func analyticsKey(vendorID string) string {
	return fmt.Sprintf("sequoia:analytics:%s", vendorID)
}
