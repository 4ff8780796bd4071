package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clubops/billing/internal/models"
)

func TestBalanceClamp(t *testing.T) {
	assert.Equal(t, int64(5000), Balance(10000, 5000))
	assert.Equal(t, int64(1), Balance(10000, 9999))
	assert.Equal(t, int64(0), Balance(10000, 10000))
	assert.Equal(t, int64(0), Balance(10000, 15000), "overpayment clamps to zero")
	assert.Equal(t, int64(10000), Balance(10000, -42), "negative allocation treated as zero")
	assert.Equal(t, int64(0), Balance(0, 0))
}

func addPaymentWithAllocation(t *testing.T, db *gorm.DB, invoiceID string, cents int64, paymentStatus string) {
	t.Helper()
	p := models.Payment{
		ID:          uuid.NewString(),
		TenantID:    testTenant,
		MemberID:    testMember,
		InvoiceID:   invoiceID,
		AmountCents: cents,
		Currency:    "USD",
		Status:      paymentStatus,
	}
	require.NoError(t, db.Create(&p).Error)
	a := models.Allocation{
		ID:          uuid.NewString(),
		TenantID:    testTenant,
		InvoiceID:   invoiceID,
		PaymentID:   p.ID,
		AmountCents: cents,
	}
	require.NoError(t, db.Create(&a).Error)
}

func TestAllocatedTotalCountsOnlySucceededPayments(t *testing.T) {
	db := newTestDB(t)
	inv := createInvoice(t, db, 10000, models.InvoiceStatusIssued, nil)

	addPaymentWithAllocation(t, db, inv.ID, 3000, models.PaymentStatusSucceeded)
	addPaymentWithAllocation(t, db, inv.ID, 2000, models.PaymentStatusSucceeded)
	addPaymentWithAllocation(t, db, inv.ID, 4000, models.PaymentStatusPending)
	addPaymentWithAllocation(t, db, inv.ID, 1000, models.PaymentStatusFailed)

	total, err := AllocatedTotal(db, testTenant, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), total)
}

func TestAllocatedTotalScopedByTenant(t *testing.T) {
	db := newTestDB(t)
	inv := createInvoice(t, db, 10000, models.InvoiceStatusIssued, nil)
	addPaymentWithAllocation(t, db, inv.ID, 5000, models.PaymentStatusSucceeded)

	total, err := AllocatedTotal(db, "other-tenant", inv.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAllocatedTotalEmptyLedger(t *testing.T) {
	db := newTestDB(t)
	inv := createInvoice(t, db, 10000, models.InvoiceStatusIssued, nil)

	total, err := AllocatedTotal(db, testTenant, inv.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}
