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
	"github.com/clubops/billing/internal/validation"
)

// CaptureService charges an invoice: it validates the request, enforces
// idempotency, creates the Payment and Allocation atomically, recomputes the
// invoice status and emits a best-effort receipt.
type CaptureService struct {
	DB       *gorm.DB
	Notifier *notify.DedupingDispatcher
	Logger   *slog.Logger
	Now      func() time.Time
}

func NewCaptureService(db *gorm.DB, notifier *notify.DedupingDispatcher, logger *slog.Logger) *CaptureService {
	return &CaptureService{DB: db, Notifier: notifier, Logger: logger, Now: time.Now}
}

// CaptureInput is the typed charge request. Exactly one of PaymentMethodID or
// Card identifies the instrument; AmountCents overrides the outstanding
// balance when set.
type CaptureInput struct {
	TenantID        string
	MemberID        string
	ActorID         string
	InvoiceID       string
	PaymentMethodID string
	Card            *CardInput
	AllowOneTime    bool
	AmountCents     *int64
	Currency        string
	IdempotencyKey  string
}

// CaptureResult reports the settled charge. Replayed is true when the result
// was served from a matching idempotency record instead of a new capture.
type CaptureResult struct {
	PaymentID     string `json:"payment_id"`
	InvoiceID     string `json:"invoice_id"`
	AmountCents   int64  `json:"amount_cents"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	InvoiceStatus string `json:"invoice_status"`
	Replayed      bool   `json:"-"`
}

// Capture runs the charge flow. Everything between the payability check and
// the idempotency-record insert happens in one transaction with the invoice
// row locked, so of two concurrent attempts the loser observes the committed
// state (invoice_paid) instead of double-charging. The operation is not
// cancellable once the transaction begins; retries ride on the idempotency
// key, not interruption.
func (s *CaptureService) Capture(ctx context.Context, in CaptureInput) (*CaptureResult, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	// Fast path: an already-recorded key returns the original result with no
	// new rows, no audit entry, no receipt.
	if in.IdempotencyKey != "" {
		if res, err := s.replay(in); err != nil {
			return nil, err
		} else if res != nil {
			return res, nil
		}
	}

	now := s.now()
	var (
		result  CaptureResult
		payment models.Payment
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND tenant_id = ?", in.InvoiceID, in.TenantID).
			First(&inv).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if inv.MemberID != in.MemberID {
			return ErrForbidden
		}
		switch {
		case inv.Void || inv.Status == models.InvoiceStatusVoid:
			return ErrInvalidStatus
		case inv.Status == models.InvoiceStatusPaid:
			return ErrInvoicePaid
		}

		inst, err := resolveInstrument(tx, in.TenantID, in.MemberID, in.PaymentMethodID, in.Card, in.AllowOneTime, now)
		if err != nil {
			return err
		}

		allocated, err := AllocatedTotal(tx, in.TenantID, inv.ID)
		if err != nil {
			return err
		}
		amount := Balance(inv.AmountCents, allocated)
		if in.AmountCents != nil {
			amount = *in.AmountCents
		}
		currency := inv.Currency
		if in.Currency != "" {
			currency = in.Currency
		}
		v := validation.Violations{}
		validation.PositiveCents("amount_cents", amount, v)
		if in.Currency != "" && in.Currency != inv.Currency {
			v.Add("currency", "currency_mismatch")
		}
		if !v.Empty() {
			return NewValidationError(v)
		}

		payment = models.Payment{
			ID:               uuid.NewString(),
			TenantID:         in.TenantID,
			MemberID:         in.MemberID,
			InvoiceID:        inv.ID,
			AmountCents:      amount,
			Currency:         currency,
			Status:           models.PaymentStatusSucceeded,
			PaymentMethodRef: inst.Ref,
			ProcessedAt:      &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		alloc := models.Allocation{
			ID:          uuid.NewString(),
			TenantID:    in.TenantID,
			InvoiceID:   inv.ID,
			PaymentID:   payment.ID,
			AmountCents: amount,
		}
		if err := tx.Create(&alloc).Error; err != nil {
			return err
		}
		audit := models.AuditEntry{
			ID:          uuid.NewString(),
			TenantID:    in.TenantID,
			InvoiceID:   inv.ID,
			MemberID:    in.MemberID,
			AmountCents: amount,
			Action:      models.AuditActionPaid,
			ActorID:     in.ActorID,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}
		if in.IdempotencyKey != "" {
			rec := models.IdempotencyRecord{
				TenantID:  in.TenantID,
				MemberID:  in.MemberID,
				Key:       in.IdempotencyKey,
				PaymentID: payment.ID,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}

		updated, err := RecomputeAndPersist(tx, in.TenantID, inv.ID, now)
		if err != nil {
			return err
		}
		result = CaptureResult{
			PaymentID:     payment.ID,
			InvoiceID:     inv.ID,
			AmountCents:   amount,
			Amount:        money.Format(amount, currency),
			Currency:      currency,
			InvoiceStatus: updated.Status,
		}
		return nil
	})
	if err != nil {
		// Two retries of the identical request can both miss the fast path;
		// the unique index on (tenant, member, key) lets exactly one commit.
		// The loser replays the winner's result.
		if in.IdempotencyKey != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
			if res, rerr := s.replay(in); rerr == nil && res != nil {
				return res, nil
			}
		}
		return nil, err
	}

	s.emitReceipt(ctx, &payment, &result)
	return &result, nil
}

func (s *CaptureService) validateInput(in CaptureInput) error {
	v := validation.Violations{}
	validation.Required("invoice_id", in.InvoiceID, v)
	validation.Required("member_id", in.MemberID, v)
	if in.AmountCents != nil {
		validation.PositiveCents("amount_cents", *in.AmountCents, v)
	}
	if in.Currency != "" {
		validation.CurrencyCode("currency", in.Currency, v)
	}
	if !v.Empty() {
		return NewValidationError(v)
	}
	return nil
}

// replay returns the result recorded for the request's idempotency key, or
// nil when no record exists yet.
func (s *CaptureService) replay(in CaptureInput) (*CaptureResult, error) {
	var rec models.IdempotencyRecord
	err := s.DB.Where("tenant_id = ? AND member_id = ? AND key = ?",
		in.TenantID, in.MemberID, in.IdempotencyKey).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var payment models.Payment
	if err := s.DB.Where("id = ? AND tenant_id = ?", rec.PaymentID, in.TenantID).First(&payment).Error; err != nil {
		return nil, err
	}
	var inv models.Invoice
	if err := s.DB.Where("id = ? AND tenant_id = ?", payment.InvoiceID, in.TenantID).First(&inv).Error; err != nil {
		return nil, err
	}
	return &CaptureResult{
		PaymentID:     payment.ID,
		InvoiceID:     inv.ID,
		AmountCents:   payment.AmountCents,
		Amount:        money.Format(payment.AmountCents, payment.Currency),
		Currency:      payment.Currency,
		InvoiceStatus: inv.Status,
		Replayed:      true,
	}, nil
}

// emitReceipt fires the receipt notification after commit. Best effort only:
// a failure here is logged and swallowed, never unwinding the payment.
func (s *CaptureService) emitReceipt(ctx context.Context, payment *models.Payment, res *CaptureResult) {
	if s.Notifier == nil {
		return
	}
	payload := map[string]any{
		"payment_id": payment.ID,
		"invoice_id": res.InvoiceID,
		"member_id":  payment.MemberID,
		"amount":     res.Amount,
		"currency":   res.Currency,
		"status":     res.InvoiceStatus,
	}
	if _, err := s.Notifier.EmitOnce(ctx, "payment:"+payment.ID, notify.EventReceipt, payload); err != nil {
		s.logger().Warn("receipt emission failed", "payment_id", payment.ID, "error", err)
	}
}

func (s *CaptureService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *CaptureService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
