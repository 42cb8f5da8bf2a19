package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/flash-sale-tickets/internal/model"
)

// PurchaseRepo provides data access to the `purchases` table.  Purchase
// rows are written only inside the allocation transaction and are
// immutable afterwards.
type PurchaseRepo struct {
	db *sql.DB
}

// NewPurchaseRepo returns a new PurchaseRepo bound to the given database.
func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// CreateTx inserts a purchase within the provided transaction and
// populates the generated ID on the record.  The caller must commit or
// roll back the transaction.
func (r *PurchaseRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Purchase) error {
	const q = `INSERT INTO purchases (user_id, ticket_id, transaction_id, amount_cents, status)
               VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, p.UserID, p.TicketID, p.TransactionID, p.AmountCents, p.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// ListByUser returns all purchases made by the given buyer, newest first.
// When no purchases exist, an empty slice is returned.
func (r *PurchaseRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Purchase, error) {
	const q = `SELECT id, user_id, ticket_id, transaction_id, amount_cents, status, created_at
               FROM purchases WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	purchases := make([]model.Purchase, 0)
	for rows.Next() {
		var p model.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.TicketID, &p.TransactionID,
			&p.AmountCents, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}

// CountByUserID counts purchases by the buyer's external identifier.
func (r *PurchaseRepo) CountByUserID(ctx context.Context, userID string) (int64, error) {
	const q = `SELECT COUNT(*) FROM purchases p
               JOIN users u ON u.id = p.user_id
               WHERE u.user_id = ?`
	var n int64
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}
