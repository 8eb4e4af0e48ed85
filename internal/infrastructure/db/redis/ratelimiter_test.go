package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*FixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFixedWindowLimiter(client), mr
}

func TestFixedWindowLimiter_AllowsUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := l.Allow(ctx, "login", "10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "hit %d should pass", i)
		assert.Equal(t, 3-i, d.Remaining)
	}

	d, err := l.Allow(ctx, "login", "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)
}

func TestFixedWindowLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()

	_, err := l.Allow(ctx, "login", "10.0.0.1", 1, time.Minute)
	require.NoError(t, err)

	d, err := l.Allow(ctx, "login", "10.0.0.2", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = l.Allow(ctx, "register", "10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestFixedWindowLimiter_WindowResets(t *testing.T) {
	l, mr := newTestLimiter(t)
	ctx := context.Background()

	_, err := l.Allow(ctx, "login", "10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	d, err := l.Allow(ctx, "login", "10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	mr.FastForward(time.Minute + time.Second)

	d, err = l.Allow(ctx, "login", "10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestFixedWindowLimiter_DisabledLimit(t *testing.T) {
	l, _ := newTestLimiter(t)

	d, err := l.Allow(context.Background(), "login", "10.0.0.1", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestFixedWindowLimiter_RedisDown(t *testing.T) {
	l, mr := newTestLimiter(t)
	mr.Close()

	_, err := l.Allow(context.Background(), "login", "10.0.0.1", 5, time.Minute)
	assert.Error(t, err)
}
