package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubops/billing/internal/models"
)

func TestRecomputeAndPersistTransitions(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	inv := createInvoice(t, db, 10000, models.InvoiceStatusIssued, nil)

	addPaymentWithAllocation(t, db, inv.ID, 4000, models.PaymentStatusSucceeded)
	updated, err := RecomputeAndPersist(db, testTenant, inv.ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, updated.Status)
	assert.Nil(t, updated.PaidAt)

	addPaymentWithAllocation(t, db, inv.ID, 6000, models.PaymentStatusSucceeded)
	updated, err = RecomputeAndPersist(db, testTenant, inv.ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, updated.Status)
	require.NotNil(t, updated.PaidAt)

	var stored models.Invoice
	require.NoError(t, db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, models.InvoiceStatusPaid, stored.Status)
	require.NotNil(t, stored.PaidAt)
}

func TestRecomputeAndPersistWritesOnlyOnChange(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	inv := createInvoice(t, db, 10000, models.InvoiceStatusIssued, nil)

	var before models.Invoice
	require.NoError(t, db.First(&before, "id = ?", inv.ID).Error)

	// No allocations, nothing to change; updated_at must not move.
	updated, err := RecomputeAndPersist(db, testTenant, inv.ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusIssued, updated.Status)

	var after models.Invoice
	require.NoError(t, db.First(&after, "id = ?", inv.ID).Error)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestRecomputeAndPersistNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := RecomputeAndPersist(db, testTenant, "missing", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)

	// Out of tenant scope reads as missing, not forbidden: the caller cannot
	// learn the invoice exists at all.
	inv := createInvoice(t, db, 1000, models.InvoiceStatusIssued, nil)
	_, err = RecomputeAndPersist(db, "other-tenant", inv.ID, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecomputeAndPersistRespectsVoid(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	inv := createInvoice(t, db, 10000, models.InvoiceStatusVoid, nil)
	require.NoError(t, db.Model(inv).Update("void", true).Error)

	addPaymentWithAllocation(t, db, inv.ID, 10000, models.PaymentStatusSucceeded)
	updated, err := RecomputeAndPersist(db, testTenant, inv.ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusVoid, updated.Status)
}
