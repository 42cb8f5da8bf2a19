package model

import "time"

// User represents a registered buyer as stored in the `users` table.
// Buyers are identified externally by the opaque UserID string; the
// numeric ID is only the internal primary key.  The purchase flow needs
// nothing beyond existence and identity, so users carry plain profile
// fields and no credentials.
//
// Fields:
//  ID        – primary key identifier of the user.
//  UserID    – external opaque buyer identifier (unique).
//  Username  – display name.
//  Email     – contact email address.
//  CreatedAt – timestamp of registration.
type User struct {
	ID        uint64    `json:"id"`         // users.id
	UserID    string    `json:"user_id"`    // users.user_id
	Username  string    `json:"username"`   // users.username
	Email     string    `json:"email"`      // users.email
	CreatedAt time.Time `json:"created_at"` // users.created_at
}
