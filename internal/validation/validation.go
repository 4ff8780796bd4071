package validation

import (
	"regexp"
	"strings"
	"time"
)

// Violations maps field name to a machine-readable violation code. Returned
// to clients as the details payload of a validation_failed error.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func (v Violations) Add(field, code string) { v[field] = code }

// Basic validators

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// PositiveCents rejects zero and negative monetary amounts.
func PositiveCents(field string, cents int64, v Violations) {
	if cents <= 0 {
		v[field] = "must_be_positive"
	}
}

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// CurrencyCode requires an ISO 4217 style three-letter uppercase code.
func CurrencyCode(field, value string, v Violations) {
	if !currencyRegex.MatchString(value) {
		v[field] = "invalid_currency"
	}
}

var cardNumberRegex = regexp.MustCompile(`^[0-9]{12,19}$`)

// CardNumber checks shape only (digits, plausible length). Real network
// validation is the payment gateway's job, not ours.
func CardNumber(field, value string, v Violations) {
	if !cardNumberRegex.MatchString(strings.ReplaceAll(value, " ", "")) {
		v[field] = "invalid_card_number"
	}
}

// CardExpiry rejects malformed or past expiry dates. A card is valid through
// the last day of its expiry month.
func CardExpiry(monthField, yearField string, month, year int, now time.Time, v Violations) {
	if month < 1 || month > 12 {
		v[monthField] = "invalid_month"
		return
	}
	if year < 100 {
		year += 2000
	}
	endOfMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	if !now.Before(endOfMonth) {
		v[yearField] = "card_expired"
	}
}
