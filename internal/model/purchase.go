package model

import "time"

// PurchaseStatusCompleted is the only status the purchase flow produces.
// The column is an enum to leave room for refund flows that are out of
// scope today.
const PurchaseStatusCompleted = "COMPLETED"

// Purchase records the sale of exactly one ticket to one buyer.  Rows are
// written only inside the purchase transaction, one per ticket sold, and
// are never mutated or deleted afterwards.  The transaction identifier is
// generated per purchase row and is unique across the system.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – buyer who made the purchase (users.id).
//  TicketID      – the exact ticket consumed (tickets.id).
//  TransactionID – unique identifier of the sale (UUID).
//  AmountCents   – amount charged, copied from the ticket price.
//  Status        – purchase status; always COMPLETED in this flow.
//  CreatedAt     – purchase timestamp.
type Purchase struct {
	ID            uint64    `json:"id"`             // purchases.id
	UserID        uint64    `json:"user_id"`        // purchases.user_id
	TicketID      uint64    `json:"ticket_id"`      // purchases.ticket_id
	TransactionID string    `json:"transaction_id"` // purchases.transaction_id
	AmountCents   uint32    `json:"amount_cents"`   // purchases.amount_cents
	Status        string    `json:"status"`         // purchases.status
	CreatedAt     time.Time `json:"created_at"`     // purchases.created_at
}
