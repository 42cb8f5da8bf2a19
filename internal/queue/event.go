// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records completed purchases.
package queue

// TicketsPurchasedEvent is published after a purchase transaction commits.
// It carries enough information for downstream consumers to log, notify,
// or feed analytics without querying the primary database.
type TicketsPurchasedEvent struct {
	UserID           string   `json:"user_id"`
	Quantity         int      `json:"quantity"`
	TransactionIDs   []string `json:"transaction_ids"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	RemainingStock   int64    `json:"remaining_stock"`
	PurchasedAt      string   `json:"purchased_at"`
}
