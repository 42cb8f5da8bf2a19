package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/iliyamo/flash-sale-tickets/internal/model"
	"github.com/iliyamo/flash-sale-tickets/internal/stock"
)

// TicketStore is the durable ticket access the inventory and listing
// operations need.
type TicketStore interface {
	CountAll(ctx context.Context) (int64, error)
	CountUnsold(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, tickets []model.Ticket) error
	ListAll(ctx context.Context) ([]model.Ticket, error)
	ListUnsold(ctx context.Context) ([]model.Ticket, error)
}

// TicketService owns inventory bootstrap and the read-side ticket
// operations.  It is the only component allowed to Set the stock counter;
// every other mutation goes through the orchestrator's atomic adds.
type TicketService struct {
	tickets    TicketStore
	counter    stock.Counter
	priceCents uint32
}

// NewTicketService constructs a TicketService selling tickets at the
// given fixed price.
func NewTicketService(tickets TicketStore, counter stock.Counter, priceCents uint32) *TicketService {
	if tickets == nil || counter == nil {
		panic("nil dependency passed to NewTicketService")
	}
	return &TicketService{tickets: tickets, counter: counter, priceCents: priceCents}
}

// InitializeInventory bootstraps the ticket pool.  It is idempotent: when
// ticket rows already exist it creates nothing and instead reconciles the
// stock counter to the durable unsold count, which covers process
// restarts where the counter is cold but the store is warm.  Otherwise it
// creates exactly total unsold tickets and sets the counter to total.
func (s *TicketService) InitializeInventory(ctx context.Context, total int) error {
	existing, err := s.tickets.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("count tickets: %w", err)
	}
	if existing > 0 {
		unsold, err := s.tickets.CountUnsold(ctx)
		if err != nil {
			return fmt.Errorf("count unsold tickets: %w", err)
		}
		if err := s.counter.Set(ctx, unsold); err != nil {
			return fmt.Errorf("reconcile stock counter: %w", err)
		}
		log.Printf("inventory: %d tickets already initialized, stock counter reconciled to %d", existing, unsold)
		return nil
	}

	tickets := make([]model.Ticket, 0, total)
	for i := 0; i < total; i++ {
		tickets = append(tickets, model.Ticket{
			TicketNumber: uuid.NewString(),
			PriceCents:   s.priceCents,
			Sold:         false,
		})
	}
	if err := s.tickets.CreateBatch(ctx, tickets); err != nil {
		return fmt.Errorf("create tickets: %w", err)
	}
	if err := s.counter.Set(ctx, int64(total)); err != nil {
		return fmt.Errorf("set stock counter: %w", err)
	}
	log.Printf("inventory: initialized %d tickets and stock counter", total)
	return nil
}

// AvailableCount returns the fast counter's view of remaining stock.
func (s *TicketService) AvailableCount(ctx context.Context) (int64, error) {
	return s.counter.Get(ctx)
}

// CheckAvailability reports whether the counter currently admits a
// purchase of the given quantity.  Best effort: the orchestrator repeats
// the check atomically.
func (s *TicketService) CheckAvailability(ctx context.Context, quantity int) (bool, error) {
	v, err := s.counter.Get(ctx)
	if err != nil {
		return false, err
	}
	return v >= int64(quantity), nil
}

// ListAll returns every ticket in the pool.
func (s *TicketService) ListAll(ctx context.Context) ([]model.Ticket, error) {
	return s.tickets.ListAll(ctx)
}

// ListAvailable returns the unsold tickets from the durable store.
func (s *TicketService) ListAvailable(ctx context.Context) ([]model.Ticket, error) {
	return s.tickets.ListUnsold(ctx)
}
