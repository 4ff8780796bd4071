package billing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clubops/billing/internal/models"
	"github.com/clubops/billing/internal/money"
	"github.com/clubops/billing/internal/validation"
)

// InvoiceService is the thin repository-style surface the rest of the
// platform uses to create and read invoices. Status is never set directly
// here beyond the initial derivation; settlement owns it afterwards.
type InvoiceService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{DB: db, Now: time.Now}
}

// CreateInvoiceInput covers manual invoices as well as the dues-run and
// event-fee billing paths, which differ only in description and due date.
type CreateInvoiceInput struct {
	TenantID    string
	MemberID    string
	AmountCents int64
	Currency    string
	Description string
	DueAt       *time.Time
}

// Create validates and persists a new invoice with its derived initial
// status (zero-amount invoices are born paid).
func (s *InvoiceService) Create(in CreateInvoiceInput) (*models.Invoice, error) {
	v := validation.Violations{}
	validation.Required("member_id", in.MemberID, v)
	if in.AmountCents < 0 {
		v.Add("amount_cents", "must_not_be_negative")
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	validation.CurrencyCode("currency", in.Currency, v)
	if !v.Empty() {
		return nil, NewValidationError(v)
	}

	now := s.now()
	inv := models.Invoice{
		ID:          uuid.NewString(),
		TenantID:    in.TenantID,
		MemberID:    in.MemberID,
		AmountCents: in.AmountCents,
		Currency:    in.Currency,
		Description: in.Description,
		DueAt:       in.DueAt,
	}
	inv.Status = ComputeStatus(&inv, 0, now)
	if inv.Status == models.InvoiceStatusPaid {
		inv.PaidAt = &now
	}
	if err := s.DB.Create(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// Find loads an invoice within tenant scope.
func (s *InvoiceService) Find(tenantID, invoiceID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.DB.Where("id = ? AND tenant_id = ?", invoiceID, tenantID).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// List returns a tenant's invoices, optionally narrowed to one member,
// newest first.
func (s *InvoiceService) List(tenantID, memberID string, limit, offset int) ([]models.Invoice, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.DB.Model(&models.Invoice{}).Where("tenant_id = ?", tenantID)
	if memberID != "" {
		q = q.Where("member_id = ?", memberID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var invs []models.Invoice
	if err := q.Order("created_at desc").Limit(limit).Offset(offset).Find(&invs).Error; err != nil {
		return nil, 0, err
	}
	return invs, total, nil
}

// BalanceView is the read-only settlement picture of one invoice. Status is
// re-derived for display without persisting, so an invoice that slipped past
// its due date shows overdue even before the next write touches it.
type BalanceView struct {
	InvoiceID      string `json:"invoice_id"`
	AmountCents    int64  `json:"amount_cents"`
	AllocatedCents int64  `json:"allocated_cents"`
	BalanceCents   int64  `json:"balance_cents"`
	Balance        string `json:"balance"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
}

// BalanceOf computes the current balance and display status for an invoice.
func (s *InvoiceService) BalanceOf(tenantID, invoiceID string) (*BalanceView, error) {
	inv, err := s.Find(tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	allocated, err := AllocatedTotal(s.DB, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	remaining := Balance(inv.AmountCents, allocated)
	return &BalanceView{
		InvoiceID:      inv.ID,
		AmountCents:    inv.AmountCents,
		AllocatedCents: allocated,
		BalanceCents:   remaining,
		Balance:        money.Format(remaining, inv.Currency),
		Currency:       inv.Currency,
		Status:         ComputeStatus(inv, allocated, s.now()),
	}, nil
}

func (s *InvoiceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
