package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reindeer-games/backend/internal/models"
)

const (
	listCacheKey = "events:list"
	listCacheTTL = 60 * time.Second
)

// ListCache holds the rendered event list in Redis so repeated reads skip the
// database. Create and delete invalidate it. Cache failures are never fatal.
type ListCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewListCache creates a Redis-backed event list cache.
func NewListCache(client *redis.Client, logger *zap.Logger) *ListCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListCache{client: client, logger: logger}
}

// Get returns the cached list and whether it was present.
func (c *ListCache) Get(ctx context.Context) ([]models.Event, bool) {
	raw, err := c.client.Get(ctx, listCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("event list cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var list []models.Event
	if err := json.Unmarshal(raw, &list); err != nil {
		c.logger.Warn("event list cache decode failed", zap.Error(err))
		return nil, false
	}
	return list, true
}

// Set stores the list with a short TTL.
func (c *ListCache) Set(ctx context.Context, list []models.Event) {
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, listCacheKey, raw, listCacheTTL).Err(); err != nil {
		c.logger.Warn("event list cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached list after a write.
func (c *ListCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, listCacheKey).Err(); err != nil {
		c.logger.Warn("event list cache invalidate failed", zap.Error(err))
	}
}
