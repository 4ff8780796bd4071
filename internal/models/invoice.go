package models

import "time"

// Invoice statuses. Only the settlement engine (or the explicit mark-paid /
// void admin actions) writes Status; everything else treats it as derived.
const (
	InvoiceStatusDraft         = "draft"
	InvoiceStatusIssued        = "issued"
	InvoiceStatusPartiallyPaid = "partially_paid"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusOverdue       = "overdue"
	InvoiceStatusVoid          = "void"
	InvoiceStatusFailed        = "failed"
)

// Invoice is a billable obligation owned by a tenant organization.
// Never deleted, only status-transitioned.
type Invoice struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	TenantID    string     `gorm:"not null;index:idx_invoices_tenant" json:"tenant_id"`
	MemberID    string     `gorm:"not null;index" json:"member_id"`
	AmountCents int64      `gorm:"not null" json:"amount_cents"`
	Currency    string     `gorm:"not null;default:'USD'" json:"currency"`
	Status      string     `gorm:"not null;default:'issued'" json:"status"`
	Void        bool       `gorm:"not null;default:false" json:"void"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
