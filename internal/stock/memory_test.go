package stock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCounterSetGetAdd(t *testing.T) {
	c := NewMemoryCounter()
	ctx := context.Background()

	v, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, c.Set(ctx, 100))

	after, err := c.Add(ctx, -3)
	require.NoError(t, err)
	assert.Equal(t, int64(97), after)

	after, err = c.Add(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(100), after)
}

func TestMemoryCounterGoesNegative(t *testing.T) {
	// The counter itself never clamps; callers detect the negative
	// post-value and undo.
	c := NewMemoryCounter()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, 1))

	after, err := c.Add(ctx, -2)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), after)

	after, err = c.Add(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after, "undo restores the pre-decrement value")
}

func TestMemoryCounterConcurrentAdds(t *testing.T) {
	const workers = 100
	const perWorker = 50

	c := NewMemoryCounter()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, workers*perWorker))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := c.Add(ctx, -1); err != nil {
					t.Errorf("add: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	v, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v, "every decrement is observed exactly once")
}
