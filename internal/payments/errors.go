package payments

import "errors"

var (
	// ErrInvalidAmount rejects create requests with a missing or
	// non-positive amount before any provider call is made.
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrNotFound indicates the order id has no local transaction.
	ErrNotFound = errors.New("transaction not found")
	// ErrAlreadyCompleted rejects cancellation of a completed
	// transaction; the provider holds the authoritative completed state
	// and overwriting it locally would silently desync the two.
	ErrAlreadyCompleted = errors.New("transaction already completed")
)
