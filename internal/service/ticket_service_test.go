package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flash-sale-tickets/internal/model"
	"github.com/iliyamo/flash-sale-tickets/internal/stock"
)

// fakeTicketStore keeps tickets in a slice, enough to drive the
// initializer and the listing paths.
type fakeTicketStore struct {
	mu   sync.Mutex
	rows []model.Ticket
}

func (f *fakeTicketStore) CountAll(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

func (f *fakeTicketStore) CountUnsold(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, t := range f.rows {
		if !t.Sold {
			n++
		}
	}
	return n, nil
}

func (f *fakeTicketStore) CreateBatch(_ context.Context, tickets []model.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range tickets {
		tickets[i].ID = uint64(len(f.rows) + 1)
		f.rows = append(f.rows, tickets[i])
	}
	return nil
}

func (f *fakeTicketStore) ListAll(context.Context) ([]model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Ticket(nil), f.rows...), nil
}

func (f *fakeTicketStore) ListUnsold(context.Context) ([]model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Ticket
	for _, t := range f.rows {
		if !t.Sold {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestInitializeInventoryCreatesPool(t *testing.T) {
	store := &fakeTicketStore{}
	counter := stock.NewMemoryCounter()
	svc := NewTicketService(store, counter, 5000)

	require.NoError(t, svc.InitializeInventory(context.Background(), 100))

	all, _ := store.ListAll(context.Background())
	require.Len(t, all, 100)
	for _, tk := range all {
		assert.False(t, tk.Sold)
		assert.Equal(t, uint32(5000), tk.PriceCents)
		assert.NotEmpty(t, tk.TicketNumber)
	}

	v, _ := counter.Get(context.Background())
	assert.Equal(t, int64(100), v)
}

func TestInitializeInventoryIsIdempotent(t *testing.T) {
	store := &fakeTicketStore{}
	counter := stock.NewMemoryCounter()
	svc := NewTicketService(store, counter, 5000)

	require.NoError(t, svc.InitializeInventory(context.Background(), 50))
	require.NoError(t, svc.InitializeInventory(context.Background(), 50))

	all, _ := store.ListAll(context.Background())
	assert.Len(t, all, 50, "second run must not create more tickets")
}

func TestInitializeInventoryReconcilesCounter(t *testing.T) {
	// Warm store, cold counter: a restart scenario.  The initializer must
	// set the counter to the durable unsold count, not the pool size.
	store := &fakeTicketStore{}
	counter := stock.NewMemoryCounter()
	svc := NewTicketService(store, counter, 5000)
	require.NoError(t, svc.InitializeInventory(context.Background(), 10))

	store.mu.Lock()
	for i := 0; i < 4; i++ {
		store.rows[i].Sold = true
	}
	store.mu.Unlock()
	require.NoError(t, counter.Set(context.Background(), 0))

	require.NoError(t, svc.InitializeInventory(context.Background(), 10))

	v, _ := counter.Get(context.Background())
	assert.Equal(t, int64(6), v)
}

func TestCheckAvailability(t *testing.T) {
	store := &fakeTicketStore{}
	counter := stock.NewMemoryCounter()
	svc := NewTicketService(store, counter, 5000)
	require.NoError(t, counter.Set(context.Background(), 3))

	ok, err := svc.CheckAvailability(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CheckAvailability(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, ok)
}
