package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubops/billing/internal/models"
)

func newSettleFixture(t *testing.T) (*SettlementService, *recordingDispatcher) {
	t.Helper()
	db := newTestDB(t)
	notifier, rec := newTestNotifier()
	return NewSettlementService(db, notifier, nil), rec
}

func TestMarkPaidOfflineSettlement(t *testing.T) {
	svc, rec := newSettleFixture(t)
	inv := createInvoice(t, svc.DB, 10000, models.InvoiceStatusIssued, nil)

	res, err := svc.MarkPaid(context.Background(), testTenant, inv.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, res.InvoiceStatus)
	assert.False(t, res.AlreadyPaid)

	var stored models.Invoice
	require.NoError(t, svc.DB.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, models.InvoiceStatusPaid, stored.Status)
	require.NotNil(t, stored.PaidAt)

	// Bypasses Payment/Allocation creation, still audited and receipted.
	assert.EqualValues(t, 0, countRows(t, svc.DB, &models.Payment{}, "invoice_id = ?", inv.ID))
	assert.EqualValues(t, 1, countRows(t, svc.DB, &models.AuditEntry{}, "invoice_id = ? AND action = ?", inv.ID, models.AuditActionMarkPaid))
	assert.Equal(t, 1, rec.count())
}

func TestMarkPaidIdempotentOnPaid(t *testing.T) {
	svc, rec := newSettleFixture(t)
	inv := createInvoice(t, svc.DB, 10000, models.InvoiceStatusIssued, nil)

	_, err := svc.MarkPaid(context.Background(), testTenant, inv.ID, "admin-1")
	require.NoError(t, err)

	// Success, not an error, and no second audit entry or receipt.
	res, err := svc.MarkPaid(context.Background(), testTenant, inv.ID, "admin-1")
	require.NoError(t, err)
	assert.True(t, res.AlreadyPaid)
	assert.EqualValues(t, 1, countRows(t, svc.DB, &models.AuditEntry{}, "invoice_id = ?", inv.ID))
	assert.Equal(t, 1, rec.count())
}

func TestMarkPaidConflictsAndNotFound(t *testing.T) {
	svc, _ := newSettleFixture(t)

	voided := createInvoice(t, svc.DB, 10000, models.InvoiceStatusVoid, nil)
	_, err := svc.MarkPaid(context.Background(), testTenant, voided.ID, "admin-1")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.MarkPaid(context.Background(), testTenant, "missing", "admin-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVoid(t *testing.T) {
	svc, _ := newSettleFixture(t)

	t.Run("voids an open invoice", func(t *testing.T) {
		inv := createInvoice(t, svc.DB, 10000, models.InvoiceStatusIssued, nil)
		voided, err := svc.Void(context.Background(), testTenant, inv.ID, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, models.InvoiceStatusVoid, voided.Status)
		assert.True(t, voided.Void)
		assert.EqualValues(t, 1, countRows(t, svc.DB, &models.AuditEntry{}, "invoice_id = ? AND action = ?", inv.ID, models.AuditActionVoid))
	})

	t.Run("void twice is harmless", func(t *testing.T) {
		inv := createInvoice(t, svc.DB, 10000, models.InvoiceStatusIssued, nil)
		_, err := svc.Void(context.Background(), testTenant, inv.ID, "admin-1")
		require.NoError(t, err)
		_, err = svc.Void(context.Background(), testTenant, inv.ID, "admin-1")
		require.NoError(t, err)
		assert.EqualValues(t, 1, countRows(t, svc.DB, &models.AuditEntry{}, "invoice_id = ?", inv.ID))
	})

	t.Run("cannot void a paid invoice", func(t *testing.T) {
		inv := createInvoice(t, svc.DB, 10000, models.InvoiceStatusPaid, nil)
		_, err := svc.Void(context.Background(), testTenant, inv.ID, "admin-1")
		assert.ErrorIs(t, err, ErrInvoicePaid)
	})
}
