package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/clubops/billing/internal/billing"
	"github.com/clubops/billing/internal/httpx"
	"github.com/clubops/billing/internal/identity"
)

// PaymentHandler exposes the settlement actions: capture, mark-paid, void.
type PaymentHandler struct {
	Capture *billing.CaptureService
	Settle  *billing.SettlementService
}

func NewPaymentHandler(capture *billing.CaptureService, settle *billing.SettlementService) *PaymentHandler {
	return &PaymentHandler{Capture: capture, Settle: settle}
}

// Pay: POST /invoices/pay
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "missing_identity", nil)
		return
	}
	var req struct {
		InvoiceID       string             `json:"invoice_id"`
		PaymentMethodID string             `json:"payment_method_id"`
		Card            *billing.CardInput `json:"card"`
		AllowOneTime    bool               `json:"allow_one_time"`
		AmountCents     *int64             `json:"amount_cents"`
		Currency        string             `json:"currency"`
		IdempotencyKey  string             `json:"idempotency_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	// Header takes precedence over body for the idempotency key; retrying
	// proxies set the header without re-reading bodies.
	if k := r.Header.Get("Idempotency-Key"); k != "" {
		req.IdempotencyKey = k
	}

	res, err := h.Capture.Capture(r.Context(), billing.CaptureInput{
		TenantID:        id.TenantID,
		MemberID:        id.MemberID,
		ActorID:         id.ActorID,
		InvoiceID:       req.InvoiceID,
		PaymentMethodID: req.PaymentMethodID,
		Card:            req.Card,
		AllowOneTime:    req.AllowOneTime,
		AmountCents:     req.AmountCents,
		Currency:        req.Currency,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		writeBillingError(w, err)
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	httpx.JSON(w, status, res)
}

// MarkPaid: POST /invoices/mark-paid (admin)
func (h *PaymentHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromContext(r.Context())
	var req struct {
		InvoiceID string `json:"invoice_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InvoiceID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"invoice_id": "required"})
		return
	}
	res, err := h.Settle.MarkPaid(r.Context(), id.TenantID, req.InvoiceID, id.ActorID)
	if err != nil {
		writeBillingError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// Void: POST /invoices/void (admin)
func (h *PaymentHandler) Void(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromContext(r.Context())
	var req struct {
		InvoiceID string `json:"invoice_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InvoiceID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"invoice_id": "required"})
		return
	}
	inv, err := h.Settle.Void(r.Context(), id.TenantID, req.InvoiceID, id.ActorID)
	if err != nil {
		writeBillingError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoice_id": inv.ID, "status": inv.Status})
}
