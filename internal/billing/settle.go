package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clubops/billing/internal/models"
	"github.com/clubops/billing/internal/money"
	"github.com/clubops/billing/internal/notify"
)

// SettlementService holds the administrative settlement actions that bypass
// the capture flow: mark-paid (offline payments such as bank transfers) and
// void. Both are intentional secondary entries into terminal states that the
// status engine does not re-derive.
type SettlementService struct {
	DB       *gorm.DB
	Notifier *notify.DedupingDispatcher
	Logger   *slog.Logger
	Now      func() time.Time
}

func NewSettlementService(db *gorm.DB, notifier *notify.DedupingDispatcher, logger *slog.Logger) *SettlementService {
	return &SettlementService{DB: db, Notifier: notifier, Logger: logger, Now: time.Now}
}

// MarkPaidResult reports the invoice state after a mark-paid call.
type MarkPaidResult struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceStatus string `json:"invoice_status"`
	AlreadyPaid   bool   `json:"already_paid"`
}

// MarkPaid settles an invoice without creating a Payment or Allocation, for
// money that arrived outside the capture flow. Re-invoking on a paid invoice
// is an idempotent success, not an error; a void invoice is a conflict.
func (s *SettlementService) MarkPaid(ctx context.Context, tenantID, invoiceID, actorID string) (*MarkPaidResult, error) {
	now := s.now()
	var (
		inv     models.Invoice
		already bool
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND tenant_id = ?", invoiceID, tenantID).
			First(&inv).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if inv.Void || inv.Status == models.InvoiceStatusVoid {
			return ErrInvalidStatus
		}
		if inv.Status == models.InvoiceStatusPaid {
			already = true
			return nil
		}
		if err := tx.Model(&models.Invoice{}).
			Where("id = ? AND tenant_id = ?", inv.ID, tenantID).
			Updates(map[string]any{"status": models.InvoiceStatusPaid, "paid_at": now}).Error; err != nil {
			return err
		}
		inv.Status = models.InvoiceStatusPaid
		inv.PaidAt = &now
		audit := models.AuditEntry{
			ID:          uuid.NewString(),
			TenantID:    tenantID,
			InvoiceID:   inv.ID,
			MemberID:    inv.MemberID,
			AmountCents: inv.AmountCents,
			Action:      models.AuditActionMarkPaid,
			ActorID:     actorID,
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}

	if !already {
		s.emit(ctx, "invoice:"+inv.ID+":mark_paid", notify.EventReceipt, map[string]any{
			"invoice_id": inv.ID,
			"member_id":  inv.MemberID,
			"amount":     money.Format(inv.AmountCents, inv.Currency),
			"currency":   inv.Currency,
			"status":     inv.Status,
			"offline":    true,
		})
	}
	return &MarkPaidResult{InvoiceID: inv.ID, InvoiceStatus: inv.Status, AlreadyPaid: already}, nil
}

// Void terminates an invoice. Terminal and sticky: once void, no allocation-
// derived state can resurface it. A paid invoice cannot be voided; the
// money already moved, and this engine carries no refund mechanism.
func (s *SettlementService) Void(ctx context.Context, tenantID, invoiceID, actorID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND tenant_id = ?", invoiceID, tenantID).
			First(&inv).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if inv.Void || inv.Status == models.InvoiceStatusVoid {
			// Voiding twice is harmless.
			return nil
		}
		if inv.Status == models.InvoiceStatusPaid {
			return ErrInvoicePaid
		}
		if err := tx.Model(&models.Invoice{}).
			Where("id = ? AND tenant_id = ?", inv.ID, tenantID).
			Updates(map[string]any{"status": models.InvoiceStatusVoid, "void": true}).Error; err != nil {
			return err
		}
		inv.Status = models.InvoiceStatusVoid
		inv.Void = true
		audit := models.AuditEntry{
			ID:          uuid.NewString(),
			TenantID:    tenantID,
			InvoiceID:   inv.ID,
			MemberID:    inv.MemberID,
			AmountCents: inv.AmountCents,
			Action:      models.AuditActionVoid,
			ActorID:     actorID,
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *SettlementService) emit(ctx context.Context, token, event string, payload map[string]any) {
	if s.Notifier == nil {
		return
	}
	if _, err := s.Notifier.EmitOnce(ctx, token, event, payload); err != nil {
		logger := s.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("notification failed", "token", token, "error", err)
	}
}

func (s *SettlementService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
