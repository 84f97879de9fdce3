package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the external collaborators. Which ones abort an
// operation and which are absorbed is decided by the workflow, not here.
var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrInventoryUnavailable  = errors.New("inventory service unavailable")
	ErrStockRejected         = errors.New("stock adjustment rejected")
	ErrDownstreamUnavailable = errors.New("downstream service unavailable")
)

// ValidationError reports malformed input, always before any side effect.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ItemUnavailableError names the line item that failed the inventory lookup.
// A missing product and an unreachable inventory service both surface as
// this error: the caller cannot tell them apart and neither produces an order.
type ItemUnavailableError struct {
	ProductID string
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError carries what the inventory service reported at
// validation time.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s. Available: %d", e.ProductName, e.Available)
}

// IllegalTransitionError carries the deny reason from CheckTransition.
type IllegalTransitionError struct {
	From   Status
	To     Status
	Reason string
}

func (e *IllegalTransitionError) Error() string { return e.Reason }
