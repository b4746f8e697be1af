package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Mutation-path and match-path failures are returned as typed errors so
// handlers can map them to precise HTTP responses. Nothing in this package
// panics across a request boundary.

var (
	// ErrAlreadyMatched is returned when a manual match targets a primary item
	// that already has an active match from a different secondary row.
	ErrAlreadyMatched = errors.New("primary item is already matched")

	// ErrMissingReason is returned when a mutation request omits the reason.
	// This is a business invariant, not a UI nicety.
	ErrMissingReason = errors.New("reason is required")

	// ErrUnknownReason is returned when the reason is neither in the managed
	// reason list nor the literal "Other".
	ErrUnknownReason = errors.New("reason is not in the reason list")
)

// ValidationError marks a caller mistake on a write path. Handlers map it to
// a 400; it is never a server fault.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// InsufficientStockError rejects a decrease/transfer that exceeds the
// quantity on hand. The on-hand quantity is unchanged when this is returned.
type InsufficientStockError struct {
	ItemId     int
	LocationId int
	Requested  decimal.Decimal
	OnHand     decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d at location %d: requested %s, on hand %s",
		e.ItemId, e.LocationId, e.Requested.String(), e.OnHand.String())
}

func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
