package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/clubops/billing/internal/billing"
	"github.com/clubops/billing/internal/httpx"
	"github.com/clubops/billing/internal/identity"
)

// DuesHandler exposes the batch billing jobs (admin only).
type DuesHandler struct {
	Svc *billing.DuesService
}

func NewDuesHandler(svc *billing.DuesService) *DuesHandler {
	return &DuesHandler{Svc: svc}
}

// Run: POST /dues/run
func (h *DuesHandler) Run(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromContext(r.Context())
	var req struct {
		Period      string     `json:"period"`
		AmountCents int64      `json:"amount_cents"`
		Currency    string     `json:"currency"`
		DueAt       *time.Time `json:"due_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	res, err := h.Svc.Run(r.Context(), billing.DuesRunInput{
		TenantID:    id.TenantID,
		Period:      req.Period,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		DueAt:       req.DueAt,
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

// Remind: POST /dues/remind
func (h *DuesHandler) Remind(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromContext(r.Context())
	count, err := h.Svc.Remind(r.Context(), id.TenantID)
	if err != nil {
		writeBillingError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reminded": count})
}
