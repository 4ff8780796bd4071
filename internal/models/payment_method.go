package models

import "time"

// Payment method statuses.
const (
	PaymentMethodActive   = "active"
	PaymentMethodInactive = "inactive"
)

// PaymentMethod is a stored instrument owned by a tenant+member. The wider
// platform manages these; the settlement engine only reads them when a charge
// references one.
type PaymentMethod struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID  string    `gorm:"not null;index" json:"tenant_id"`
	MemberID  string    `gorm:"not null;index" json:"member_id"`
	Status    string    `gorm:"not null;default:'active'" json:"status"`
	Label     string    `json:"label,omitempty"`
	Brand     string    `json:"brand,omitempty"`
	Last4     string    `json:"last4,omitempty"`
	ExpMonth  int       `json:"exp_month,omitempty"`
	ExpYear   int       `json:"exp_year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
