package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/flash-sale-tickets/internal/model"
)

// Allocator commits the durable side of a purchase: it consumes unsold
// tickets and records the matching purchase rows in one all-or-nothing
// transaction.  Either every requested ticket flips to sold with its
// purchase row written, or nothing changes.  A reader of unsold tickets
// therefore never observes a sold ticket without its purchase record.
type Allocator struct {
	tickets   *TicketRepo
	purchases *PurchaseRepo
}

// NewAllocator returns an Allocator over the given repositories.  Both
// must share the same underlying database.
func NewAllocator(tickets *TicketRepo, purchases *PurchaseRepo) *Allocator {
	return &Allocator{tickets: tickets, purchases: purchases}
}

// Allocate marks quantity unsold tickets sold and inserts one COMPLETED
// purchase per ticket for the given buyer, each with a fresh transaction
// identifier and the ticket's own price as the amount charged.  When the
// store holds fewer than quantity unsold rows, the transaction is rolled
// back and ErrNotEnoughTickets is returned with nothing written; the
// caller decides whether that is a rejection or a consistency fault.
func (a *Allocator) Allocate(ctx context.Context, buyer model.User, quantity int) ([]model.Purchase, error) {
	tx, err := a.tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	available, err := a.tickets.FindUnsoldTx(ctx, tx, quantity)
	if err != nil {
		return nil, err
	}
	if len(available) < quantity {
		return nil, ErrNotEnoughTickets
	}

	now := time.Now().UTC()
	purchases := make([]model.Purchase, 0, quantity)
	for _, t := range available {
		if err := a.tickets.MarkSoldTx(ctx, tx, t.ID, now); err != nil {
			return nil, err
		}
		p := model.Purchase{
			UserID:        buyer.ID,
			TicketID:      t.ID,
			TransactionID: uuid.NewString(),
			AmountCents:   t.PriceCents,
			Status:        model.PurchaseStatusCompleted,
			CreatedAt:     now,
		}
		if err := a.purchases.CreateTx(ctx, tx, &p); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return purchases, nil
}
