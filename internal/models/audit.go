package models

import "time"

// Audit actions recorded by the settlement engine.
const (
	AuditActionPaid         = "paid"
	AuditActionMarkPaid     = "mark_paid"
	AuditActionVoid         = "void"
	AuditActionReminderSent = "reminder_sent"
)

// AuditEntry is an append-only record written for every state-changing
// operation on an invoice. No read API here; reporting lives elsewhere.
type AuditEntry struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID    string    `gorm:"not null;index" json:"tenant_id"`
	InvoiceID   string    `gorm:"not null;index" json:"invoice_id"`
	MemberID    string    `json:"member_id,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Action      string    `gorm:"not null" json:"action"`
	ActorID     string    `json:"actor_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
