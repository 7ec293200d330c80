package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"prepwise/internal/model"
)

// CatalogCache memoizes question catalogs. The catalog is immutable
// within a session's lifetime, so rollups can reuse it freely; this is
// a performance aid only and never a correctness requirement.
type CatalogCache interface {
	GetQuestions(ctx context.Context, productType string, testMode model.TestMode) ([]*model.QuestionRecord, error)
	SetQuestions(ctx context.Context, productType string, testMode model.TestMode, questions []*model.QuestionRecord) error
}

type catalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a new catalog cache
func NewCatalogCache(client *redis.Client) CatalogCache {
	return &catalogCache{
		client: client,
		ttl:    time.Hour,
	}
}

func (c *catalogCache) key(productType string, testMode model.TestMode) string {
	return fmt.Sprintf("catalog:%s:%s", productType, testMode)
}

func (c *catalogCache) GetQuestions(ctx context.Context, productType string, testMode model.TestMode) ([]*model.QuestionRecord, error) {
	data, err := c.client.Get(ctx, c.key(productType, testMode)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var questions []*model.QuestionRecord
	if err := json.Unmarshal([]byte(data), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *catalogCache) SetQuestions(ctx context.Context, productType string, testMode model.TestMode, questions []*model.QuestionRecord) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(productType, testMode), data, c.ttl).Err()
}
