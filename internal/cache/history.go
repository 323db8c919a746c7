package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hetulpatel/intellichat/internal/models"
)

// HistoryCache keeps recently read conversation histories so repeated reads
// skip the database. Implementations are optional at runtime; callers treat
// a nil cache as a permanent miss.
type HistoryCache interface {
	Get(ctx context.Context, sessionID string, limit int) ([]models.Message, bool, error)
	Set(ctx context.Context, sessionID string, limit int, messages []models.Message) error
	Invalidate(ctx context.Context, sessionID string) error
	Close() error
}

type historyEntry struct {
	Limit    int              `json:"limit"`
	Messages []models.Message `json:"messages"`
}

type redisHistoryCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisHistoryCache builds a cache keyed by session ID.
func NewRedisHistoryCache(addr, password string, db int, ttl time.Duration, prefix string) (HistoryCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if prefix == "" {
		prefix = "chat_history"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisHistoryCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisHistoryCache) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", c.prefix, sessionID)
}

func (c *redisHistoryCache) Get(ctx context.Context, sessionID string, limit int) ([]models.Message, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var entry historyEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, err
	}
	// A cached window shorter than requested cannot serve the read.
	if entry.Limit < limit {
		return nil, false, nil
	}
	if len(entry.Messages) > limit {
		entry.Messages = entry.Messages[:limit]
	}
	return entry.Messages, true, nil
}

func (c *redisHistoryCache) Set(ctx context.Context, sessionID string, limit int, messages []models.Message) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(historyEntry{Limit: limit, Messages: messages})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(sessionID), raw, c.ttl).Err()
}

func (c *redisHistoryCache) Invalidate(ctx context.Context, sessionID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(sessionID)).Err()
}

func (c *redisHistoryCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
