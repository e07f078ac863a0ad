package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCompanyChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:company:1", CompanyChannel(1))
	assert.Equal(t, "notifications:company:250", CompanyChannel(250))
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishPostLiked(context.Background(), PostLiked{PostID: 1, OwnerCompanyID: 2}))
	assert.NoError(t, n.StartCompanySubscriber(context.Background(), func(string, string) {}))

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.PublishPostLiked(context.Background(), PostLiked{}))
}

func TestNotifier_PublishReachesOwnerChannel(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type received struct{ channel, payload string }
	got := make(chan received, 1)
	require.NoError(t, n.StartCompanySubscriber(ctx, func(channel, payload string) {
		got <- received{channel, payload}
	}))

	likedAt := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, n.PublishPostLiked(context.Background(), PostLiked{
		PostID:         10,
		OwnerCompanyID: 3,
		LikedBy:        4,
		LikedAt:        likedAt,
	}))

	select {
	case msg := <-got:
		assert.Equal(t, "notifications:company:3", msg.channel)

		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.payload), &ev))
		assert.Equal(t, EventPostLiked, ev.Type)

		var body PostLiked
		require.NoError(t, json.Unmarshal(ev.Payload, &body))
		assert.Equal(t, uint(10), body.PostID)
		assert.Equal(t, uint(4), body.LikedBy)
		assert.True(t, likedAt.Equal(body.LikedAt))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for post_liked event")
	}
}
