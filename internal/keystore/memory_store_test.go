package keystore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.Now
	return store, clock
}

func TestMemoryStore_RevokeExpires(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore()

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	clock.Advance(time.Minute)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryStore_IncrResetsPerWindow(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore()

	for want := int64(1); want <= 3; want++ {
		n, err := store.Incr(ctx, "10.0.0.1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, err := store.Incr(ctx, "10.0.0.2", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "keys are counted separately")

	clock.Advance(time.Minute)
	n, err = store.Incr(ctx, "10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStore_ConcurrentIncr(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Incr(ctx, "k", time.Hour)
		}()
	}
	wg.Wait()

	n, err := store.Incr(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(51), n)
}

func TestSecondsRoundsUpToOne(t *testing.T) {
	assert.Equal(t, int64(1), seconds(0))
	assert.Equal(t, int64(1), seconds(300*time.Millisecond))
	assert.Equal(t, int64(90), seconds(90*time.Second))
}

func TestMemoryStore_SweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore()

	require.NoError(t, store.Revoke(ctx, "jti-old", time.Second))
	_, err := store.Incr(ctx, "10.0.0.1", time.Second)
	require.NoError(t, err)
	_, err = store.Incr(ctx, "10.0.0.2", time.Hour)
	require.NoError(t, err)

	clock.Advance(2 * sweepInterval)
	require.NoError(t, store.Revoke(ctx, "jti-new", time.Hour))

	assert.Len(t, store.revoked, 1)
	assert.Contains(t, store.revoked, "jti-new")
	assert.Len(t, store.buckets, 1)
	assert.Contains(t, store.buckets, "10.0.0.2")
}
