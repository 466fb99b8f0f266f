package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"craftcrm/internal/model"
	"craftcrm/pkg/metrics"
)

// TimelineCache is a read-side cache of computed timelines. Reads may be
// served from the latest committed state without locking; every
// successful transition invalidates the key.
type TimelineCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewTimelineCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *TimelineCache {
	return &TimelineCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *TimelineCache) key(projectID int) string {
	return fmt.Sprintf("timeline:%d", projectID)
}

// Get returns the cached timeline, or false on miss. Redis failures
// degrade to a miss; the caller falls back to the database.
func (c *TimelineCache) Get(ctx context.Context, projectID int) ([]model.TimelineEntry, bool) {
	if c.rdb == nil {
		metrics.RecordTimelineCache("bypass")
		return nil, false
	}

	data, err := c.rdb.Get(ctx, c.key(projectID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Timeline cache read failed", zap.Error(err))
		}
		metrics.RecordTimelineCache("miss")
		return nil, false
	}

	var entries []model.TimelineEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		metrics.RecordTimelineCache("miss")
		return nil, false
	}
	metrics.RecordTimelineCache("hit")
	return entries, true
}

func (c *TimelineCache) Set(ctx context.Context, projectID int, entries []model.TimelineEntry) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(projectID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Timeline cache write failed", zap.Error(err))
	}
}

func (c *TimelineCache) Invalidate(ctx context.Context, projectID int) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.key(projectID)).Err(); err != nil {
		c.logger.Warn("Timeline cache invalidation failed", zap.Error(err))
	}
}
