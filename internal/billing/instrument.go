package billing

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/clubops/billing/internal/models"
	"github.com/clubops/billing/internal/validation"
)

// CardInput is a one-time card-like instrument supplied inline. The engine
// validates shape and expiry only; it never talks to a payment network
// (settlement against the network is a pluggable concern outside this core).
type CardInput struct {
	Number   string `json:"number"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	Name     string `json:"name,omitempty"`
}

// instrument is the resolved descriptor recorded on the Payment.
type instrument struct {
	Ref string
}

// resolveInstrument resolves the charge's instrument:
//   - a stored payment-method reference must be active and owned by the same
//     tenant+member, else payment_method_not_found;
//   - otherwise a one-time card is accepted only when the caller allows it,
//     after field validation.
func resolveInstrument(db *gorm.DB, tenantID, memberID, methodID string, card *CardInput, allowOneTime bool, now time.Time) (instrument, error) {
	if methodID != "" {
		var pm models.PaymentMethod
		err := db.Where("id = ? AND tenant_id = ? AND member_id = ?", methodID, tenantID, memberID).
			First(&pm).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return instrument{}, ErrPaymentMethodNotFound
			}
			return instrument{}, err
		}
		if pm.Status != models.PaymentMethodActive {
			return instrument{}, ErrPaymentMethodNotFound
		}
		return instrument{Ref: "pm:" + pm.ID}, nil
	}

	v := validation.Violations{}
	if card == nil {
		v.Add("payment_method_id", "required")
		return instrument{}, NewValidationError(v)
	}
	if !allowOneTime {
		v.Add("card", "one_time_instrument_not_allowed")
		return instrument{}, NewValidationError(v)
	}
	validation.CardNumber("card.number", card.Number, v)
	validation.CardExpiry("card.exp_month", "card.exp_year", card.ExpMonth, card.ExpYear, now, v)
	if !v.Empty() {
		return instrument{}, NewValidationError(v)
	}
	digits := strings.ReplaceAll(card.Number, " ", "")
	return instrument{Ref: "card:" + digits[len(digits)-4:]}, nil
}
