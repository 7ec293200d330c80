package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"prepwise/internal/model"
)

// InsightCache stores computed aggregate results per user and view.
// Every response or completion write invalidates the user's entries, so
// a cached aggregate is always recomputable from the same stored
// attempts (the rollup itself stays idempotent).
type InsightCache interface {
	Get(ctx context.Context, userID, productType, view string) (*model.AggregateResult, error)
	Set(ctx context.Context, userID, productType, view string, result *model.AggregateResult) error
	Invalidate(ctx context.Context, userID, productType string) error
}

type insightCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewInsightCache creates a new insight cache
func NewInsightCache(client *redis.Client) InsightCache {
	return &insightCache{
		client: client,
		ttl:    6 * time.Hour,
	}
}

// views is the full set of cacheable views per (user, product); kept
// static so invalidation can delete deterministically without SCAN.
func views() []string {
	v := []string{"diagnostic", "drills"}
	for n := 1; n <= model.PracticeTestCount; n++ {
		v = append(v, fmt.Sprintf("practice_%d", n))
	}
	return v
}

func (c *insightCache) key(userID, productType, view string) string {
	return fmt.Sprintf("insights:%s:%s:%s", userID, productType, view)
}

func (c *insightCache) Get(ctx context.Context, userID, productType, view string) (*model.AggregateResult, error) {
	data, err := c.client.Get(ctx, c.key(userID, productType, view)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result model.AggregateResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *insightCache) Set(ctx context.Context, userID, productType, view string, result *model.AggregateResult) error {
	// Provisional aggregates are not cached: the pending assessment can
	// land at any moment and would serve stale placeholder numbers.
	if result.HasProvisionalUnits {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(userID, productType, view), data, c.ttl).Err()
}

func (c *insightCache) Invalidate(ctx context.Context, userID, productType string) error {
	keys := make([]string, 0, len(views()))
	for _, view := range views() {
		keys = append(keys, c.key(userID, productType, view))
	}
	return c.client.Del(ctx, keys...).Err()
}
