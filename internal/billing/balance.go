package billing

import (
	"gorm.io/gorm"

	"github.com/clubops/billing/internal/models"
)

// AllocatedTotal sums the allocations for an invoice whose payment actually
// succeeded. Pending or failed payments contribute nothing to settlement.
// The result is clamped to zero before use; allocation rows are positive by
// construction but the invariant does not depend on that.
func AllocatedTotal(db *gorm.DB, tenantID, invoiceID string) (int64, error) {
	var total int64
	err := db.Model(&models.Allocation{}).
		Joins("JOIN payments ON payments.id = allocations.payment_id").
		Where("allocations.tenant_id = ? AND allocations.invoice_id = ? AND payments.status = ?",
			tenantID, invoiceID, models.PaymentStatusSucceeded).
		Select("COALESCE(SUM(allocations.amount_cents), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total < 0 {
		total = 0
	}
	return total, nil
}

// Balance is the remaining unpaid amount: amount minus allocated, never
// negative even when an invoice is over-paid.
func Balance(amountCents, allocatedCents int64) int64 {
	if allocatedCents < 0 {
		allocatedCents = 0
	}
	remaining := amountCents - allocatedCents
	if remaining < 0 {
		return 0
	}
	return remaining
}
