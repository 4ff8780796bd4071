package billing

import (
	"errors"
	"fmt"

	"github.com/clubops/billing/internal/validation"
)

// Sentinel errors forming the engine's taxonomy. Messages double as the
// snake_case error codes returned to callers.
var (
	// ErrNotFound: invoice missing or outside the caller's tenant scope.
	ErrNotFound = errors.New("not_found")

	// ErrForbidden: record exists but belongs to another member.
	ErrForbidden = errors.New("forbidden")

	// ErrInvoicePaid: the invoice is already settled. A genuine conflict, not
	// an idempotent success; the request did not match a recorded
	// idempotency key, so pretending it succeeded would lie about a charge.
	ErrInvoicePaid = errors.New("invoice_paid")

	// ErrInvalidStatus: the invoice is void or otherwise non-payable.
	ErrInvalidStatus = errors.New("invalid_status")

	// ErrPaymentMethodNotFound: referenced stored method missing, inactive,
	// or owned by a different tenant+member.
	ErrPaymentMethodNotFound = errors.New("payment_method_not_found")

	// ErrValidation is the root of all ValidationError values.
	ErrValidation = errors.New("validation_failed")
)

// ValidationError carries the per-field violation list for validation_failed.
type ValidationError struct {
	Fields validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation_failed: %d field(s)", len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError wraps a non-empty violation set.
func NewValidationError(v validation.Violations) error {
	return &ValidationError{Fields: v}
}

// IsConflict reports whether the error is a state conflict (HTTP 409 class).
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvoicePaid) || errors.Is(err, ErrInvalidStatus)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrPaymentMethodNotFound)
}
