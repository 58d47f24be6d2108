package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type snapshot struct {
	Ids []string
}

func TestLocalPollCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewLocalPollCache(time.Minute)

	var got snapshot
	assert.False(t, c.Get(ctx, InboxKey("u1"), &got))

	c.Set(ctx, InboxKey("u1"), snapshot{Ids: []string{"a", "b"}})
	assert.True(t, c.Get(ctx, InboxKey("u1"), &got))
	assert.Equal(t, []string{"a", "b"}, got.Ids)

	// Callers get a private copy.
	got.Ids[0] = "z"
	var again snapshot
	assert.True(t, c.Get(ctx, InboxKey("u1"), &again))
	assert.Equal(t, "a", again.Ids[0])
}

func TestLocalPollCacheDeleteAndExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewLocalPollCache(20 * time.Millisecond)
	id := uuid.New()

	c.Set(ctx, ThreadKey(id), snapshot{Ids: []string{"m1"}})
	c.Set(ctx, InboxKey("u2"), snapshot{})
	c.Delete(ctx, ThreadKey(id))

	var got snapshot
	assert.False(t, c.Get(ctx, ThreadKey(id), &got))
	assert.True(t, c.Get(ctx, InboxKey("u2"), &got))

	time.Sleep(40 * time.Millisecond)
	assert.False(t, c.Get(ctx, InboxKey("u2"), &got))
}

func TestKeysAreDisjoint(t *testing.T) {
	id := uuid.New()
	assert.NotEqual(t, InboxKey(id.String()), ThreadKey(id))
}
