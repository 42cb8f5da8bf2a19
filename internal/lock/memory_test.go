package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerAcquireAndRelease(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	l, err := locker.Acquire(ctx, "lock:user:alice", time.Second, time.Minute)
	require.NoError(t, err)

	held, err := l.Held(ctx)
	require.NoError(t, err)
	assert.True(t, held)

	require.NoError(t, l.Release(ctx))
	held, err = l.Held(ctx)
	require.NoError(t, err)
	assert.False(t, held)

	// Release is idempotent.
	require.NoError(t, l.Release(ctx))
}

func TestMemoryLockerContentionTimesOut(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	first, err := locker.Acquire(ctx, "k", time.Second, time.Minute)
	require.NoError(t, err)
	defer first.Release(ctx)

	start := time.Now()
	_, err = locker.Acquire(ctx, "k", 30*time.Millisecond, time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond, "waits out the window before giving up")
}

func TestMemoryLockerIndependentKeys(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	a, err := locker.Acquire(ctx, "lock:user:alice", 10*time.Millisecond, time.Minute)
	require.NoError(t, err)
	defer a.Release(ctx)

	b, err := locker.Acquire(ctx, "lock:user:bob", 10*time.Millisecond, time.Minute)
	require.NoError(t, err)
	defer b.Release(ctx)
}

func TestMemoryLockerLeaseExpiry(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	stale, err := locker.Acquire(ctx, "k", time.Second, 20*time.Millisecond)
	require.NoError(t, err)

	// After the lease lapses the lock is free for the next holder.
	fresh, err := locker.Acquire(ctx, "k", 200*time.Millisecond, time.Minute)
	require.NoError(t, err)

	held, err := stale.Held(ctx)
	require.NoError(t, err)
	assert.False(t, held, "expired holder no longer owns the lock")

	// The stale holder's release must not free the new holder's grant.
	require.NoError(t, stale.Release(ctx))
	held, err = fresh.Held(ctx)
	require.NoError(t, err)
	assert.True(t, held)

	require.NoError(t, fresh.Release(ctx))
}

func TestMemoryLockerAcquireHonorsContext(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	first, err := locker.Acquire(ctx, "k", time.Second, time.Minute)
	require.NoError(t, err)
	defer first.Release(ctx)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = locker.Acquire(cctx, "k", time.Second, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryLockerMutualExclusion(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	var mu sync.Mutex
	inCritical := 0
	maxInCritical := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := locker.Acquire(ctx, "k", 5*time.Second, time.Minute)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
			if err := l.Release(ctx); err != nil {
				t.Errorf("release: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical, "at most one holder at a time")
}
