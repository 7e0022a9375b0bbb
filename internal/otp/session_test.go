package otp

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore_CreateAndConsume(t *testing.T) {
	store := NewMemorySessionStore(nil)
	ctx := context.Background()

	sess, err := store.Create(ctx, "9876543210")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(sess.Token), 32, "token must encode at least 16 random bytes")

	res, err := store.Consume(ctx, sess.Token)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "9876543210", res.Phone)
}

func TestMemorySessionStore_SecondConsumeReportsUsed(t *testing.T) {
	store := NewMemorySessionStore(nil)
	ctx := context.Background()

	sess, err := store.Create(ctx, "9876543210")
	require.NoError(t, err)

	res, err := store.Consume(ctx, sess.Token)
	require.NoError(t, err)
	require.True(t, res.OK)

	res, err = store.Consume(ctx, sess.Token)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonUsed, res.Reason)
}

func TestMemorySessionStore_MissingToken(t *testing.T) {
	store := NewMemorySessionStore(nil)

	res, err := store.Consume(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonMissing, res.Reason)
}

func TestMemorySessionStore_ExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore(func() time.Time { return now })
	ctx := context.Background()

	sess, err := store.Create(ctx, "9876543210")
	require.NoError(t, err)

	now = now.Add(SessionTTL + time.Second)

	res, err := store.Consume(ctx, sess.Token)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonExpired, res.Reason)
}

// The critical invariant: N concurrent consumes of one token succeed exactly once.
func TestMemorySessionStore_ConcurrentConsumeSingleSuccess(t *testing.T) {
	store := NewMemorySessionStore(nil)
	ctx := context.Background()

	sess, err := store.Create(ctx, "9876543210")
	require.NoError(t, err)

	const workers = 64
	var successes int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := store.Consume(ctx, sess.Token)
			if err == nil && res.OK {
				atomic.AddInt64(&successes, 1)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), successes, "exactly one concurrent consume may succeed")
}

func TestMemorySessionStore_TokensAreUnique(t *testing.T) {
	store := NewMemorySessionStore(nil)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		sess, err := store.Create(ctx, "9876543210")
		require.NoError(t, err)
		require.False(t, seen[sess.Token], "duplicate session token")
		seen[sess.Token] = true
	}
}
