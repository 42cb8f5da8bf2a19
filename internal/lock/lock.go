// Package lock provides leased, keyed mutual exclusion shared by every
// process instance.  The purchase flow acquires one lock per buyer so
// that a buyer cannot race themselves, while unrelated buyers proceed in
// parallel.  A lock carries a lease: if the holder crashes or hangs, the
// lock is auto-revoked once the lease expires, so a release must only
// remove the lock when the caller still owns it.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned when a lock cannot be acquired within the
// caller's wait window because another holder owns it.
var ErrNotAcquired = errors.New("lock not acquired")

// Lock represents an acquired leased lock.
type Lock interface {
	// Release lets go of the lock.  It is idempotent and safe to call
	// after the lease has expired: it removes the lock only when the
	// caller is still the holder and otherwise does nothing, so a holder
	// whose lease lapsed can never release a lock that has since been
	// granted to someone else.
	Release(ctx context.Context) error
	// Held reports whether the caller still owns the lock.
	Held(ctx context.Context) (bool, error)
}

// Locker grants leased locks keyed by an arbitrary string.
type Locker interface {
	// Acquire blocks up to wait trying to take the lock for key.  On
	// success the lock is held for at most lease before auto-expiry.
	// When the wait window elapses without a grant, ErrNotAcquired is
	// returned and nothing is held.
	Acquire(ctx context.Context, key string, wait, lease time.Duration) (Lock, error)
}
