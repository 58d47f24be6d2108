package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// PollCache holds short-lived inbox and thread snapshots for pollers.
// Values are stored as JSON so both backends hand out private copies.
type PollCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	Delete(ctx context.Context, keys ...string)
}

func InboxKey(participantId string) string {
	return "poll:inbox:" + participantId
}

func ThreadKey(sessionId uuid.UUID) string {
	return "poll:thread:" + sessionId.String()
}

type LocalPollCache struct {
	cache *cache.Cache
}

func NewLocalPollCache(ttl time.Duration) *LocalPollCache {
	// Expired items are swept every 30s; Get already ignores them.
	c := cache.New(ttl, 30*time.Second)
	return &LocalPollCache{
		cache: c,
	}
}

func (r *LocalPollCache) Get(_ context.Context, key string, dest interface{}) bool {
	x, found := r.cache.Get(key)
	if !found {
		return false
	}
	return json.Unmarshal(x.([]byte), dest) == nil
}

func (r *LocalPollCache) Set(_ context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	r.cache.Set(key, raw, cache.DefaultExpiration)
}

func (r *LocalPollCache) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		r.cache.Delete(key)
	}
}
