package handlers

import (
	"errors"
	"net/http"

	"github.com/clubops/billing/internal/billing"
	"github.com/clubops/billing/internal/httpx"
)

// writeBillingError maps the engine's error taxonomy onto HTTP. Conflicts are
// 409, scope violations 403, missing records 404, malformed input 400 with
// the per-field details list; anything unclassified is a 500.
func writeBillingError(w http.ResponseWriter, err error) {
	var vErr *billing.ValidationError
	switch {
	case errors.As(err, &vErr):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", vErr.Fields)
	case billing.IsNotFound(err):
		httpx.JSONError(w, http.StatusNotFound, errCode(err), nil)
	case errors.Is(err, billing.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	case billing.IsConflict(err):
		httpx.JSONError(w, http.StatusConflict, errCode(err), nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// errCode resolves the wire code from the matched sentinel; the sentinel
// messages double as the codes.
func errCode(err error) string {
	for _, s := range []error{
		billing.ErrNotFound,
		billing.ErrPaymentMethodNotFound,
		billing.ErrInvoicePaid,
		billing.ErrInvalidStatus,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal_error"
}
