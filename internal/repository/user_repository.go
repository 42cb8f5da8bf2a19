package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/flash-sale-tickets/internal/model"
)

// UserRepo provides access to the `users` table. Buyers are looked up by
// their external user_id string; the numeric primary key is internal.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// CreateIfNotExists registers a user, or returns the existing row when the
// user_id is already registered. Registration is idempotent so the load
// simulator and retrying clients can call it blindly.
func (r *UserRepo) CreateIfNotExists(ctx context.Context, userID, username, email string) (model.User, error) {
	if u, err := r.GetByUserID(ctx, userID); err == nil {
		return u, nil
	} else if err != sql.ErrNoRows {
		return model.User{}, err
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (user_id, username, email) VALUES (?,?,?)",
		userID, strings.TrimSpace(username), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// 1062: duplicate key; a concurrent registration won the race.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return r.GetByUserID(ctx, userID)
		}
		return model.User{}, err
	}
	return r.GetByUserID(ctx, userID)
}

// GetByUserID fetches a user by external identifier. Returns
// sql.ErrNoRows when the buyer is unknown.
func (r *UserRepo) GetByUserID(ctx context.Context, userID string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, username, email, created_at FROM users WHERE user_id=? LIMIT 1",
		userID).Scan(&u.ID, &u.UserID, &u.Username, &u.Email, &u.CreatedAt)
	return u, err
}

// Exists reports whether a buyer with the given user_id is registered.
func (r *UserRepo) Exists(ctx context.Context, userID string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE user_id=? LIMIT 1", userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
