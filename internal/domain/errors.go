package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks malformed input: missing address, bad id,
	// non-positive quantity. Wrap it with detail for the client message.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrProductUnavailable is returned when a referenced product does not
	// resolve or resolves to a soft-deleted record. The whole order fails;
	// there are no partial orders.
	ErrProductUnavailable = errors.New("product unavailable")

	ErrNotFound = errors.New("not found")
)

// StockError reports a line item whose quantity cannot be satisfied.
// Available is the stock observed when the check failed, so the client
// can render the deficit.
type StockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	if e.Available <= 0 {
		return fmt.Sprintf("product %s is out of stock", e.ProductID)
	}
	return fmt.Sprintf("product %s: requested %d, only %d in stock (short %d)",
		e.ProductID, e.Requested, e.Available, e.Requested-e.Available)
}

// OutOfStock distinguishes a fully depleted product from one that merely
// cannot cover the requested quantity.
func (e *StockError) OutOfStock() bool { return e.Available <= 0 }

// TransitionError names the attempted source and target status of an
// illegal lifecycle step.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}
