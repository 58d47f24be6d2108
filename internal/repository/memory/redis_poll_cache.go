package memory

import (
	"context"
	"encoding/json"
	"time"

	"confidential-chat-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisPollCache shares poll snapshots between API instances so a write on
// one instance invalidates the snapshot every instance serves.
type RedisPollCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

func NewRedisPollCache(rdb *redis.Client, ttl time.Duration, logger logger.ILogger) *RedisPollCache {
	return &RedisPollCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *RedisPollCache) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("POLL_CACHE", "Redis get failed", map[string]interface{}{"error": err.Error()})
		}
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (r *RedisPollCache) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("POLL_CACHE", "Redis set failed", map[string]interface{}{"error": err.Error()})
	}
}

func (r *RedisPollCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("POLL_CACHE", "Redis delete failed", map[string]interface{}{"error": err.Error()})
	}
}
