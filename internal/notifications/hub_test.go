package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(1, nil)
	require.NoError(t, err)
	other, err := hub.Register(2, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, hub.Count(1))

	hub.Broadcast(1, []byte("hello"))
	assert.Equal(t, []byte("hello"), <-a.Send)
	assert.Equal(t, []byte("hello"), <-b.Send)
	assert.Empty(t, other.Send)
}

func TestHub_UnregisterClosesSendOnce(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(5, nil)
	require.NoError(t, err)

	hub.Unregister(c)
	hub.Unregister(c)

	_, open := <-c.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.Count(5))

	hub.Broadcast(5, []byte("nobody listening"))
}

func TestHub_PerCompanyLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerCompany; i++ {
		_, err := hub.Register(9, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(9, nil)
	assert.ErrorIs(t, err, ErrCompanyConnLimit)

	_, err = hub.Register(10, nil)
	assert.NoError(t, err)
}

func TestHub_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	for i := 0; i < cap(c.Send); i++ {
		require.True(t, c.TrySend([]byte("x")))
	}
	assert.False(t, c.TrySend([]byte("overflow")))
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(4, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	_, open := <-c.Send
	assert.False(t, open)

	hub.Unregister(c)
	_, err = hub.Register(4, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHub_StartWiringForwardsToCompany(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	owner, err := hub.Register(7, nil)
	require.NoError(t, err)
	bystander, err := hub.Register(8, nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishPostLiked(context.Background(), PostLiked{PostID: 1, OwnerCompanyID: 7, LikedBy: 8}))

	select {
	case msg := <-owner.Send:
		assert.Contains(t, string(msg), `"type":"post_liked"`)
	case <-time.After(2 * time.Second):
		t.Fatal("owner did not receive the event")
	}
	assert.Never(t, func() bool { return len(bystander.Send) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}
