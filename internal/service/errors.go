// Package service contains the business logic of the flash sale: the
// inventory initializer and the purchase orchestrator.  This file defines
// the sentinel errors that classify every way a purchase can fail.  Any
// error returned by the services that is not one of these sentinels is
// transient: the counter and lock have been restored and the caller may
// safely retry the whole operation.
package service

import "errors"

// ErrInvalidQuantity is returned when the requested quantity is below one.
// Nothing is touched; no lock is taken.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ErrBuyerNotFound is returned when the buyer is not registered.  Nothing
// is touched; no lock is taken.
var ErrBuyerNotFound = errors.New("buyer not found")

// ErrLockContention is returned when another purchase by the same buyer
// held the buyer lock for the whole wait window.  Nothing is touched.
var ErrLockContention = errors.New("another purchase is in progress for this buyer")

// ErrInsufficientStock is returned when the stock counter cannot admit the
// requested quantity, either on the initial read or because the atomic
// decrement went negative and was undone.  No durable state is touched.
var ErrInsufficientStock = errors.New("not enough tickets available")

// ErrDataInconsistency is returned when the counter admitted the purchase
// but the ticket store could not supply the rows.  The decrement has been
// compensated and the fault logged; it is never retried automatically,
// since blind retries against a torn counter invariant would mask a real
// bug.  Operator attention is required.
var ErrDataInconsistency = errors.New("stock counter disagrees with ticket store")
