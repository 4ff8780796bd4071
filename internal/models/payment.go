package models

import "time"

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Payment records one successful capture attempt. Immutable once succeeded;
// corrections happen through new records, never edits.
type Payment struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	TenantID         string     `gorm:"not null;index" json:"tenant_id"`
	MemberID         string     `gorm:"not null;index" json:"member_id"`
	InvoiceID        string     `gorm:"index" json:"invoice_id,omitempty"` // legacy 1:1 reference; allocations are authoritative
	AmountCents      int64      `gorm:"not null" json:"amount_cents"`
	Currency         string     `gorm:"not null" json:"currency"`
	Status           string     `gorm:"not null" json:"status"`
	PaymentMethodRef string     `json:"payment_method_ref,omitempty"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Allocation is the append-only join record stating how much of a Payment was
// applied to an Invoice. The sum of allocations tied to succeeded payments is
// the authoritative amount paid on an invoice.
type Allocation struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID    string    `gorm:"not null;index" json:"tenant_id"`
	InvoiceID   string    `gorm:"not null;index" json:"invoice_id"`
	PaymentID   string    `gorm:"not null;index" json:"payment_id"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

// IdempotencyRecord maps a caller-supplied key to the Payment it produced,
// scoped to tenant+member so a key cannot be replayed across tenants. The
// unique index makes the check-and-insert atomic across processes.
type IdempotencyRecord struct {
	ID        uint      `gorm:"primaryKey"`
	TenantID  string    `gorm:"not null;uniqueIndex:idx_idem_scope_key" json:"tenant_id"`
	MemberID  string    `gorm:"not null;uniqueIndex:idx_idem_scope_key" json:"member_id"`
	Key       string    `gorm:"not null;uniqueIndex:idx_idem_scope_key" json:"key"`
	PaymentID string    `gorm:"not null" json:"payment_id"`
	CreatedAt time.Time `json:"created_at"`
}
