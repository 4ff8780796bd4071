package billing

import (
	"time"

	"github.com/clubops/billing/internal/models"
)

// ComputeStatus derives an invoice's status from its amount, the total of
// succeeded allocations against it, and the clock. It is the single source
// of truth for status: pure, total, and idempotent. No other code path may
// write Invoice.Status except the explicit mark-paid and void admin actions,
// which this function is not expected to re-derive.
//
// Void is sticky: it is set out of band by an admin and overrides every
// allocation-derived state.
func ComputeStatus(inv *models.Invoice, allocatedCents int64, now time.Time) string {
	if inv.Void || inv.Status == models.InvoiceStatusVoid {
		return models.InvoiceStatusVoid
	}
	if allocatedCents < 0 {
		allocatedCents = 0
	}
	// Zero-amount invoices are trivially settled.
	if inv.AmountCents == 0 {
		return models.InvoiceStatusPaid
	}
	if allocatedCents == 0 {
		if inv.DueAt != nil && inv.DueAt.Before(now) {
			return models.InvoiceStatusOverdue
		}
		return models.InvoiceStatusIssued
	}
	if allocatedCents < inv.AmountCents {
		return models.InvoiceStatusPartiallyPaid
	}
	// Full or over-payment. Excess is not refunded automatically; the balance
	// calculator clamps it to zero.
	if allocatedCents >= inv.AmountCents {
		return models.InvoiceStatusPaid
	}
	// Unreachable; a hit here is a defect in the branches above.
	return models.InvoiceStatusIssued
}
