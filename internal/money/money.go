// Package money formats integer cent amounts for human-facing payloads.
// All balance arithmetic in the engine stays in int64 cents; decimal is used
// strictly at the display boundary (receipts, balance endpoint).
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zero-decimal currencies are expressed in whole units already.
var zeroDecimal = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
}

// exponent returns the number of minor-unit digits for a currency.
func exponent(currency string) int32 {
	if zeroDecimal[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// FromCents converts a cent amount into its decimal currency value,
// e.g. 12345 USD cents -> 123.45.
func FromCents(cents int64, currency string) decimal.Decimal {
	return decimal.New(cents, -exponent(currency))
}

// Format renders a cent amount with the currency's minor-unit precision.
func Format(cents int64, currency string) string {
	exp := exponent(currency)
	return FromCents(cents, currency).StringFixed(exp)
}
