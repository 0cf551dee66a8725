package models

import (
	"errors"
	"fmt"
)

// ErrValidation indicates a malformed or missing input on a ledger operation.
var ErrValidation = errors.New("invalid request")

// ErrProductNotFound indicates the named product does not exist in the ledger.
var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError rejects an operation that would drive stock negative.
// Available carries the quantity the caller could still take.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock, available: %d", e.Available)
}
