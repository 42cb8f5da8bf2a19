// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// services to distinguish between failure scenarios. For example,
// ErrNotEnoughTickets signals that the store could not supply the
// requested number of unsold rows, which the purchase orchestrator
// treats differently from an ordinary database error.
package repository

import "errors"

// ErrNotEnoughTickets is returned by the allocator when fewer unsold
// tickets exist than the purchase requested. The allocation transaction
// is rolled back before this is returned, so no rows are written.
var ErrNotEnoughTickets = errors.New("not enough unsold tickets")
