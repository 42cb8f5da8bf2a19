package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/flash-sale-tickets/internal/model"
)

// TicketRepo provides data access to the `tickets` table.  Tickets are
// created once by the inventory initializer and mutated only by the
// allocation transaction, which flips the sold flag.  All timestamps are
// stored in UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the provided database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span tickets and purchases.
func (r *TicketRepo) DB() *sql.DB { return r.db }

// CountAll returns the total number of ticket rows ever initialized.
func (r *TicketRepo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&n)
	return n, err
}

// CountUnsold returns the authoritative number of unsold tickets.  The
// fast stock counter is reconciled against this value.
func (r *TicketRepo) CountUnsold(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE sold = 0`).Scan(&n)
	return n, err
}

// CreateBatch inserts the given tickets in a single statement.  Used only
// by the inventory initializer.  Passing an empty slice has no effect.
func (r *TicketRepo) CreateBatch(ctx context.Context, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := `INSERT INTO tickets (ticket_number, price_cents, sold) VALUES `
	args := make([]interface{}, 0, len(tickets)*3)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, t.TicketNumber, t.PriceCents, t.Sold)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListAll returns every ticket ordered by id.
func (r *TicketRepo) ListAll(ctx context.Context) ([]model.Ticket, error) {
	const q = `SELECT id, ticket_number, price_cents, sold, created_at, updated_at
               FROM tickets ORDER BY id`
	return r.list(ctx, q)
}

// ListUnsold returns every unsold ticket ordered by id.
func (r *TicketRepo) ListUnsold(ctx context.Context) ([]model.Ticket, error) {
	const q = `SELECT id, ticket_number, price_cents, sold, created_at, updated_at
               FROM tickets WHERE sold = 0 ORDER BY id`
	return r.list(ctx, q)
}

func (r *TicketRepo) list(ctx context.Context, query string) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.PriceCents, &t.Sold, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

// FindUnsoldTx fetches up to limit unsold tickets inside the provided
// transaction, locking the rows with FOR UPDATE so concurrent allocation
// transactions cannot consume the same ticket twice.  Rows come back in
// ascending id order, which keeps the selection stable across callers.
func (r *TicketRepo) FindUnsoldTx(ctx context.Context, tx *sql.Tx, limit int) ([]model.Ticket, error) {
	const q = `SELECT id, ticket_number, price_cents, sold, created_at, updated_at
               FROM tickets WHERE sold = 0 ORDER BY id LIMIT ? FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tickets []model.Ticket
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.PriceCents, &t.Sold, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

// MarkSoldTx flips one ticket to sold and stamps updated_at, within the
// provided transaction.  The sold guard makes the update a no-op if the
// row was somehow consumed already; the caller must treat that as fatal
// to the transaction.
func (r *TicketRepo) MarkSoldTx(ctx context.Context, tx *sql.Tx, ticketID uint64, at time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE tickets SET sold = 1, updated_at = ? WHERE id = ? AND sold = 0`,
		at.UTC().Format("2006-01-02 15:04:05"), ticketID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrNotEnoughTickets
	}
	return nil
}
