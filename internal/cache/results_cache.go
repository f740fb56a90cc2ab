package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gobag/internal/model"
)

// ResultsCache holds the last computed aggregation per session, backing the
// dashboard REST read and the CSV export between change events.
type ResultsCache interface {
	Set(ctx context.Context, sessionID string, results *model.SessionResults) error
	Get(ctx context.Context, sessionID string) (*model.SessionResults, error)
	Delete(ctx context.Context, sessionID string) error
}

type resultsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultsCache(client *redis.Client) ResultsCache {
	return &resultsCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *resultsCache) key(sessionID string) string {
	return fmt.Sprintf("results:%s", sessionID)
}

func (c *resultsCache) Set(ctx context.Context, sessionID string, results *model.SessionResults) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(sessionID), data, c.ttl).Err()
}

func (c *resultsCache) Get(ctx context.Context, sessionID string) (*model.SessionResults, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var results model.SessionResults
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		return nil, err
	}
	return &results, nil
}

func (c *resultsCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, c.key(sessionID)).Err()
}
