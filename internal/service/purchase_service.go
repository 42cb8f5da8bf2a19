package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/flash-sale-tickets/internal/lock"
	"github.com/iliyamo/flash-sale-tickets/internal/model"
	"github.com/iliyamo/flash-sale-tickets/internal/queue"
	"github.com/iliyamo/flash-sale-tickets/internal/repository"
	"github.com/iliyamo/flash-sale-tickets/internal/stock"
)

// UserStore is the buyer lookup the orchestrator needs.  Absent buyers
// are reported as sql.ErrNoRows, matching the repository layer.
type UserStore interface {
	GetByUserID(ctx context.Context, userID string) (model.User, error)
}

// TicketAllocator commits the durable side of a purchase in one
// all-or-nothing transaction.  It returns repository.ErrNotEnoughTickets
// when the store cannot supply the quantity, with nothing written.
type TicketAllocator interface {
	Allocate(ctx context.Context, buyer model.User, quantity int) ([]model.Purchase, error)
}

// PurchaseHistory reads committed purchases for the reporting endpoints.
type PurchaseHistory interface {
	ListByUser(ctx context.Context, userID uint64) ([]model.Purchase, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
}

// EventPublisher announces completed purchases to the message broker.
// Publishing is best effort: a broker outage must never fail a purchase
// that has already committed.
type EventPublisher interface {
	PublishTicketsPurchased(ctx context.Context, ev queue.TicketsPurchasedEvent) error
}

// PurchaseService orchestrates ticket purchases.  It owns no state of its
// own; the stock counter and locker are shared resources passed in by
// handle so the orchestrator can be exercised against in-memory fakes.
type PurchaseService struct {
	users     UserStore
	alloc     TicketAllocator
	history   PurchaseHistory
	counter   stock.Counter
	locker    lock.Locker
	publisher EventPublisher // may be nil; purchases then go unannounced

	lockPrefix string
	lockWait   time.Duration
	lockLease  time.Duration
}

// NewPurchaseService constructs the orchestrator.  The lease must exceed
// the worst-case allocation time so the lock cannot auto-expire while the
// durable transaction is still in flight; config.Load enforces the lower
// bound against the wait window.
func NewPurchaseService(users UserStore, alloc TicketAllocator, history PurchaseHistory,
	counter stock.Counter, locker lock.Locker, publisher EventPublisher,
	lockPrefix string, lockWait, lockLease time.Duration) *PurchaseService {
	if users == nil || alloc == nil || history == nil || counter == nil || locker == nil {
		panic("nil dependency passed to NewPurchaseService")
	}
	return &PurchaseService{
		users:      users,
		alloc:      alloc,
		history:    history,
		counter:    counter,
		locker:     locker,
		publisher:  publisher,
		lockPrefix: lockPrefix,
		lockWait:   lockWait,
		lockLease:  lockLease,
	}
}

// Purchase attempts to buy quantity tickets for the buyer identified by
// userID.  It returns the post-operation stock counter value and, on
// failure, one of the sentinel errors from errors.go or a wrapped
// transient error.  Every failure path leaves the counter and the buyer
// lock in their pre-call state: a decrement is compensated by adding the
// quantity back through the same atomic primitive, and the lock release
// is deferred on every path and guarded by a holder check.
func (s *PurchaseService) Purchase(ctx context.Context, userID string, quantity int) (int64, error) {
	if quantity < 1 {
		return s.remaining(ctx), ErrInvalidQuantity
	}

	// Buyer lookup happens before any lock is taken; an unknown buyer
	// must not consume lock-service capacity.
	buyer, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.remaining(ctx), ErrBuyerNotFound
		}
		return s.remaining(ctx), fmt.Errorf("buyer lookup: %w", err)
	}

	// The lock key is buyer-scoped: repeated attempts by one buyer
	// serialize, unrelated buyers never wait on each other.
	l, err := s.locker.Acquire(ctx, s.lockPrefix+userID, s.lockWait, s.lockLease)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			log.Printf("purchase: lock busy for user %s, another purchase in progress", userID)
			return s.remaining(ctx), ErrLockContention
		}
		return s.remaining(ctx), fmt.Errorf("acquire buyer lock: %w", err)
	}
	defer func() {
		// Release must run even when the request context is gone, and
		// only while we are still the holder (the lease may have
		// expired and the lock been re-granted to a later attempt).
		rctx := context.WithoutCancel(ctx)
		if held, herr := l.Held(rctx); herr == nil && !held {
			return
		}
		if rerr := l.Release(rctx); rerr != nil {
			log.Printf("purchase: release lock for user %s: %v", userID, rerr)
		}
	}()

	// Fast admission check; nothing is reserved yet, so a failure here
	// needs no compensation.
	available, err := s.counter.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("read stock counter: %w", err)
	}
	if available < int64(quantity) {
		log.Printf("purchase: rejected user %s, requested %d but %d available", userID, quantity, available)
		return available, ErrInsufficientStock
	}

	// Reserve by atomic decrement.  A negative result means another
	// buyer won the race between the read above and this decrement; the
	// undo uses the same atomic add, never a read-then-write.
	after, err := s.counter.Add(ctx, -int64(quantity))
	if err != nil {
		return s.remaining(ctx), fmt.Errorf("reserve stock: %w", err)
	}
	if after < 0 {
		if _, uerr := s.counter.Add(ctx, int64(quantity)); uerr != nil {
			log.Printf("purchase: undo over-reservation for user %s: %v", userID, uerr)
		}
		return s.remaining(ctx), ErrInsufficientStock
	}

	purchases, err := s.alloc.Allocate(ctx, buyer, quantity)
	if err != nil {
		// The reservation is held only by the counter; give it back
		// before classifying the failure.
		if _, cerr := s.counter.Add(ctx, int64(quantity)); cerr != nil {
			log.Printf("purchase: compensate stock for user %s: %v", userID, cerr)
		}
		if errors.Is(err, repository.ErrNotEnoughTickets) {
			// The counter admitted a purchase the store cannot supply:
			// the counter invariant is torn.  Reported for operator
			// attention, never silently retried.
			log.Printf("purchase: stock counter ahead of ticket store (user=%s quantity=%d)", userID, quantity)
			return s.remaining(ctx), ErrDataInconsistency
		}
		return s.remaining(ctx), fmt.Errorf("allocate tickets: %w", err)
	}

	s.announce(ctx, buyer, purchases, after)
	log.Printf("purchase: user %s bought %d ticket(s), %d remaining", userID, quantity, after)
	return after, nil
}

// History returns all committed purchases for a buyer, newest first.
func (s *PurchaseService) History(ctx context.Context, userID string) ([]model.Purchase, error) {
	buyer, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBuyerNotFound
		}
		return nil, fmt.Errorf("buyer lookup: %w", err)
	}
	return s.history.ListByUser(ctx, buyer.ID)
}

// CountByUser returns the number of committed purchases for a buyer.
func (s *PurchaseService) CountByUser(ctx context.Context, userID string) (int64, error) {
	if _, err := s.users.GetByUserID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrBuyerNotFound
		}
		return 0, fmt.Errorf("buyer lookup: %w", err)
	}
	return s.history.CountByUserID(ctx, userID)
}

// announce publishes the purchase event.  Failures are logged and
// swallowed; the sale has already committed.
func (s *PurchaseService) announce(ctx context.Context, buyer model.User, purchases []model.Purchase, remaining int64) {
	if s.publisher == nil || len(purchases) == 0 {
		return
	}
	ev := queue.TicketsPurchasedEvent{
		UserID:         buyer.UserID,
		Quantity:       len(purchases),
		RemainingStock: remaining,
		PurchasedAt:    purchases[0].CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, p := range purchases {
		ev.TransactionIDs = append(ev.TransactionIDs, p.TransactionID)
		ev.TotalAmountCents += p.AmountCents
	}
	if err := s.publisher.PublishTicketsPurchased(ctx, ev); err != nil {
		log.Printf("purchase: publish event for user %s: %v", buyer.UserID, err)
	}
}

// remaining reads the counter for failure responses; a read error falls
// back to zero rather than masking the primary failure.
func (s *PurchaseService) remaining(ctx context.Context) int64 {
	v, err := s.counter.Get(ctx)
	if err != nil {
		return 0
	}
	return v
}
