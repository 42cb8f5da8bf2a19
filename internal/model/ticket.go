package model

import "time"

// Ticket represents one sellable unit in the fixed inventory pool as
// stored in the `tickets` table.  Tickets are interchangeable; the
// ticket number exists only for human-readable receipts.  A ticket is
// created unsold by the inventory initializer and flips to sold exactly
// once, inside the purchase transaction.  Sold tickets never revert.
//
// Fields:
//  ID           – primary key identifier of the ticket.
//  TicketNumber – opaque human-readable ticket number (UUID).
//  PriceCents   – fixed price of the ticket in cents.
//  Sold         – whether the ticket has been sold.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update (set when the ticket is sold).
type Ticket struct {
	ID           uint64    `json:"id"`            // tickets.id
	TicketNumber string    `json:"ticket_number"` // tickets.ticket_number
	PriceCents   uint32    `json:"price_cents"`   // tickets.price_cents
	Sold         bool      `json:"sold"`          // tickets.sold
	CreatedAt    time.Time `json:"created_at"`    // tickets.created_at
	UpdatedAt    time.Time `json:"updated_at"`    // tickets.updated_at
}
