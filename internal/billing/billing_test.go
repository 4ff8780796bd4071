package billing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clubops/billing/internal/models"
	"github.com/clubops/billing/internal/notify"
)

const (
	testTenant = "tenant-1"
	testMember = "member-1"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Member{}, &models.PaymentMethod{}, &models.Invoice{},
		&models.Payment{}, &models.Allocation{}, &models.IdempotencyRecord{},
		&models.AuditEntry{}, &models.DuesRun{},
	))
	return db
}

func createInvoice(t *testing.T, db *gorm.DB, amountCents int64, status string, dueAt *time.Time) *models.Invoice {
	t.Helper()
	inv := &models.Invoice{
		ID:          uuid.NewString(),
		TenantID:    testTenant,
		MemberID:    testMember,
		AmountCents: amountCents,
		Currency:    "USD",
		Status:      status,
		DueAt:       dueAt,
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}

func createPaymentMethod(t *testing.T, db *gorm.DB, status string) *models.PaymentMethod {
	t.Helper()
	pm := &models.PaymentMethod{
		ID:       uuid.NewString(),
		TenantID: testTenant,
		MemberID: testMember,
		Status:   status,
		Brand:    "visa",
		Last4:    "4242",
		ExpMonth: 12,
		ExpYear:  2031,
	}
	require.NoError(t, db.Create(pm).Error)
	return pm
}

// recordingDispatcher captures emissions for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []string
}

func (d *recordingDispatcher) Emit(_ context.Context, event string, _ map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

func newTestNotifier() (*notify.DedupingDispatcher, *recordingDispatcher) {
	rec := &recordingDispatcher{}
	return &notify.DedupingDispatcher{Next: rec, Dedupe: notify.NewMemoryDeduper()}, rec
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
