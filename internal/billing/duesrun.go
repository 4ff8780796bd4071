package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clubops/billing/internal/models"
	"github.com/clubops/billing/internal/money"
	"github.com/clubops/billing/internal/notify"
	"github.com/clubops/billing/internal/validation"
)

// DuesService is a batch caller of the settlement primitives: the periodic
// dues run creates one invoice per active member, and the reminder sweep
// recomputes due invoices and nudges their members. Neither introduces any
// concurrency of its own; each record goes through the same per-invoice
// primitives as the request paths.
type DuesService struct {
	DB       *gorm.DB
	Notifier *notify.DedupingDispatcher
	Logger   *slog.Logger
	Now      func() time.Time
}

func NewDuesService(db *gorm.DB, notifier *notify.DedupingDispatcher, logger *slog.Logger) *DuesService {
	return &DuesService{DB: db, Notifier: notifier, Logger: logger, Now: time.Now}
}

// DuesRunInput describes one billing period for a tenant.
type DuesRunInput struct {
	TenantID    string
	Period      string // e.g. "2026-09"
	AmountCents int64
	Currency    string
	DueAt       *time.Time
}

// DuesRunResult reports what the run produced. Replayed means the period was
// already billed and nothing new was created.
type DuesRunResult struct {
	RunID        string `json:"run_id"`
	Period       string `json:"period"`
	InvoiceCount int    `json:"invoice_count"`
	Replayed     bool   `json:"replayed"`
}

// Run bills every active member of the tenant for the period. The run record
// carries a unique (tenant, period) index, so re-running a period (a retried
// cron job, an impatient admin) is a no-op that reports the original run.
func (s *DuesService) Run(ctx context.Context, in DuesRunInput) (*DuesRunResult, error) {
	v := validation.Violations{}
	validation.Required("period", in.Period, v)
	validation.PositiveCents("amount_cents", in.AmountCents, v)
	if !v.Empty() {
		return nil, NewValidationError(v)
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}

	var prior models.DuesRun
	err := s.DB.Where("tenant_id = ? AND period = ?", in.TenantID, in.Period).First(&prior).Error
	if err == nil {
		return &DuesRunResult{RunID: prior.ID, Period: prior.Period, InvoiceCount: prior.InvoiceCount, Replayed: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var members []models.Member
	if err := s.DB.Where("tenant_id = ? AND active = ?", in.TenantID, true).Find(&members).Error; err != nil {
		return nil, err
	}

	run := models.DuesRun{
		ID:          uuid.NewString(),
		TenantID:    in.TenantID,
		Period:      in.Period,
		AmountCents: in.AmountCents,
		Currency:    in.Currency,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Creating the run first claims the period; a concurrent duplicate
		// run trips the unique index here before any invoices exist.
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		for _, m := range members {
			now := s.now()
			inv := models.Invoice{
				ID:          uuid.NewString(),
				TenantID:    in.TenantID,
				MemberID:    m.ID,
				AmountCents: in.AmountCents,
				Currency:    in.Currency,
				Description: "Membership dues " + in.Period,
				DueAt:       in.DueAt,
			}
			inv.Status = ComputeStatus(&inv, 0, now)
			if err := tx.Create(&inv).Error; err != nil {
				return err
			}
			run.InvoiceCount++
		}
		return tx.Model(&models.DuesRun{}).Where("id = ?", run.ID).
			Update("invoice_count", run.InvoiceCount).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if rerr := s.DB.Where("tenant_id = ? AND period = ?", in.TenantID, in.Period).First(&prior).Error; rerr == nil {
				return &DuesRunResult{RunID: prior.ID, Period: prior.Period, InvoiceCount: prior.InvoiceCount, Replayed: true}, nil
			}
		}
		return nil, err
	}

	s.logger().Info("dues run completed", "tenant_id", in.TenantID, "period", in.Period, "invoices", run.InvoiceCount)
	return &DuesRunResult{RunID: run.ID, Period: run.Period, InvoiceCount: run.InvoiceCount}, nil
}

// Remind sweeps the tenant's unpaid invoices past their due date: each one is
// recomputed (flipping issued to overdue) and its member is reminded, deduped
// per invoice per day so a sweep re-run stays quiet.
func (s *DuesService) Remind(ctx context.Context, tenantID string) (int, error) {
	now := s.now()
	var due []models.Invoice
	err := s.DB.Where(
		"tenant_id = ? AND void = ? AND status IN ? AND due_at IS NOT NULL AND due_at < ?",
		tenantID, false,
		[]string{models.InvoiceStatusIssued, models.InvoiceStatusPartiallyPaid, models.InvoiceStatusOverdue},
		now,
	).Find(&due).Error
	if err != nil {
		return 0, err
	}

	reminded := 0
	for _, inv := range due {
		updated := &inv
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			var terr error
			updated, terr = RecomputeAndPersist(tx, tenantID, inv.ID, now)
			return terr
		})
		if err != nil {
			s.logger().Warn("reminder recompute failed", "invoice_id", inv.ID, "error", err)
			continue
		}
		if updated.Status == models.InvoiceStatusPaid || updated.Status == models.InvoiceStatusVoid {
			continue
		}

		allocated, err := AllocatedTotal(s.DB, tenantID, inv.ID)
		if err != nil {
			s.logger().Warn("reminder balance failed", "invoice_id", inv.ID, "error", err)
			continue
		}
		remaining := Balance(inv.AmountCents, allocated)
		token := "reminder:" + inv.ID + ":" + now.Format("2006-01-02")
		if s.Notifier != nil {
			sent, err := s.Notifier.EmitOnce(ctx, token, notify.EventReminder, map[string]any{
				"invoice_id": inv.ID,
				"member_id":  inv.MemberID,
				"balance":    money.Format(remaining, inv.Currency),
				"currency":   inv.Currency,
				"due_at":     inv.DueAt,
			})
			if err != nil {
				s.logger().Warn("reminder emission failed", "invoice_id", inv.ID, "error", err)
				continue
			}
			if !sent {
				// Already reminded today; no fresh audit entry either.
				continue
			}
		}
		audit := models.AuditEntry{
			ID:          uuid.NewString(),
			TenantID:    tenantID,
			InvoiceID:   inv.ID,
			MemberID:    inv.MemberID,
			AmountCents: remaining,
			Action:      models.AuditActionReminderSent,
			ActorID:     "system",
		}
		if err := s.DB.Create(&audit).Error; err != nil {
			s.logger().Warn("reminder audit failed", "invoice_id", inv.ID, "error", err)
		}
		reminded++
	}
	return reminded, nil
}

func (s *DuesService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *DuesService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
