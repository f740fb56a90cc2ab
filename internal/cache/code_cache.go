package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodePointer tells the resolver where a 4-digit code leads without touching
// Mongo: a session for workshop codes, a session+team pair for team codes.
type CodePointer struct {
	SessionID string `json:"sessionId"`
	TeamID    string `json:"teamId,omitempty"`
}

// CodeCache is the secondary index from access code to its scope. It doubles
// as the uniqueness probe at code-generation time.
type CodeCache interface {
	Set(ctx context.Context, code string, ptr *CodePointer) error
	Get(ctx context.Context, code string) (*CodePointer, error)
	Delete(ctx context.Context, codes ...string) error
	Exists(ctx context.Context, code string) (bool, error)
}

type codeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCodeCache(client *redis.Client) CodeCache {
	return &codeCache{
		client: client,
		ttl:    30 * 24 * time.Hour, // codes live as long as a school term realistically needs
	}
}

func (c *codeCache) key(code string) string {
	return fmt.Sprintf("code:%s", code)
}

func (c *codeCache) Set(ctx context.Context, code string, ptr *CodePointer) error {
	data, err := json.Marshal(ptr)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(code), data, c.ttl).Err()
}

func (c *codeCache) Get(ctx context.Context, code string) (*CodePointer, error) {
	data, err := c.client.Get(ctx, c.key(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ptr CodePointer
	if err := json.Unmarshal([]byte(data), &ptr); err != nil {
		return nil, err
	}
	return &ptr, nil
}

func (c *codeCache) Delete(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = c.key(code)
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *codeCache) Exists(ctx context.Context, code string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(code)).Result()
	return n > 0, err
}
