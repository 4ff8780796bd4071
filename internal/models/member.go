package models

import "time"

// Member is owned by the membership side of the platform; the billing core
// reads it for receipt addressing and for dues runs.
type Member struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID  string    `gorm:"not null;index" json:"tenant_id"`
	Email     string    `gorm:"not null" json:"email"`
	Name      string    `json:"name,omitempty"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DuesRun tracks one execution of the periodic dues invoicing job per tenant,
// keyed by period so re-running the same period never double-invoices.
type DuesRun struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID     string    `gorm:"not null;uniqueIndex:idx_dues_run_period" json:"tenant_id"`
	Period       string    `gorm:"not null;uniqueIndex:idx_dues_run_period" json:"period"` // e.g. 2026-09
	AmountCents  int64     `gorm:"not null" json:"amount_cents"`
	Currency     string    `gorm:"not null" json:"currency"`
	InvoiceCount int       `json:"invoice_count"`
	CreatedAt    time.Time `json:"created_at"`
}
