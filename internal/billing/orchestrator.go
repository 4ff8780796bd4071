package billing

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clubops/billing/internal/models"
)

// RecomputeAndPersist reloads an invoice under a row lock, re-derives its
// status from the allocation ledger, and writes the result only if it changed.
// Must run inside a transaction. The lock matters for callers that did not
// already hold the row (the reminder sweep): without it a capture committing
// between the read and the write here would be overwritten by the stale
// derivation. Inside the capture transaction the row is already locked and
// re-locking is a no-op.
//
// Writing only on change keeps the updated_at column and any update triggers
// quiet when nothing moved.
func RecomputeAndPersist(db *gorm.DB, tenantID, invoiceID string, now time.Time) (*models.Invoice, error) {
	var inv models.Invoice
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ?", invoiceID, tenantID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	allocated, err := AllocatedTotal(db, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	next := ComputeStatus(&inv, allocated, now)
	if next == inv.Status {
		return &inv, nil
	}

	updates := map[string]any{"status": next}
	switch {
	case next == models.InvoiceStatusPaid && inv.PaidAt == nil:
		updates["paid_at"] = now
	case next != models.InvoiceStatusPaid && inv.PaidAt != nil:
		updates["paid_at"] = nil
	}
	if err := db.Model(&models.Invoice{}).
		Where("id = ? AND tenant_id = ?", inv.ID, tenantID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	inv.Status = next
	if v, ok := updates["paid_at"]; ok {
		if v == nil {
			inv.PaidAt = nil
		} else {
			t := now
			inv.PaidAt = &t
		}
	}
	return &inv, nil
}
