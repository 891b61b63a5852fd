package order

import "errors"

var (
	// ErrNotFound is wrapped with the order id by the service.
	ErrNotFound = errors.New("order not found")

	// ErrCreateFailed is the single outward error for any failure in the
	// creation pipeline. The underlying cause is logged, never returned.
	ErrCreateFailed = errors.New("order creation failed")

	// ErrInvalidTransition rejects a status move not in the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrChargeConflict rejects a paid confirmation for an order that is
	// already paid under a different charge id.
	ErrChargeConflict = errors.New("order already paid with a different charge")
)
