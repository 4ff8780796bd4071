package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/clubops/billing/internal/billing"
	"github.com/clubops/billing/internal/httpx"
	"github.com/clubops/billing/internal/identity"
)

// InvoiceHandler exposes the repository-style invoice surface the rest of
// the platform calls: create, list, balance.
type InvoiceHandler struct {
	Svc *billing.InvoiceService
}

func NewInvoiceHandler(svc *billing.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc}
}

// List: GET /invoices?member=&limit=&page=
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromContext(r.Context())
	member := r.URL.Query().Get("member")
	if !id.Admin {
		// Non-admins see their own invoices only.
		member = id.MemberID
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	invs, total, err := h.Svc.List(id.TenantID, member, limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /invoices (admin: manual and event-fee invoices)
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromContext(r.Context())
	var req struct {
		MemberID    string     `json:"member_id"`
		AmountCents int64      `json:"amount_cents"`
		Currency    string     `json:"currency"`
		Description string     `json:"description"`
		DueAt       *time.Time `json:"due_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	inv, err := h.Svc.Create(billing.CreateInvoiceInput{
		TenantID:    id.TenantID,
		MemberID:    req.MemberID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Description: req.Description,
		DueAt:       req.DueAt,
	})
	if err != nil {
		writeBillingError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// Balance: GET /invoices/balance?id=...
func (h *InvoiceHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromContext(r.Context())
	invoiceID := r.URL.Query().Get("id")
	if invoiceID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	view, err := h.Svc.BalanceOf(id.TenantID, invoiceID)
	if err != nil {
		writeBillingError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}
