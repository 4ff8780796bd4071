package validation

import (
	"testing"
	"time"
)

func TestRequired(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	Required("email", "a@b", v)
	if v["name"] != "required" {
		t.Fatalf("expected name violation, got %v", v)
	}
	if _, ok := v["email"]; ok {
		t.Fatalf("unexpected email violation: %v", v)
	}
}

func TestPositiveCents(t *testing.T) {
	v := Violations{}
	PositiveCents("amount", 0, v)
	PositiveCents("other", 100, v)
	if v["amount"] != "must_be_positive" {
		t.Fatalf("expected amount violation, got %v", v)
	}
	empty := Violations{}
	if !empty.Empty() {
		t.Fatal("empty violations should report Empty")
	}
}

func TestCurrencyCode(t *testing.T) {
	cases := map[string]bool{
		"USD": true, "EUR": true, "usd": false, "US": false, "USDD": false, "": false,
	}
	for code, ok := range cases {
		v := Violations{}
		CurrencyCode("currency", code, v)
		if ok == !v.Empty() {
			t.Fatalf("currency %q: violations=%v", code, v)
		}
	}
}

func TestCardNumber(t *testing.T) {
	v := Violations{}
	CardNumber("card", "4242 4242 4242 4242", v)
	if !v.Empty() {
		t.Fatalf("spaced card number should pass: %v", v)
	}
	v = Violations{}
	CardNumber("card", "4242-4242", v)
	if v["card"] != "invalid_card_number" {
		t.Fatalf("expected card violation, got %v", v)
	}
}

func TestCardExpiry(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	v := Violations{}
	CardExpiry("m", "y", 9, 2026, now, v)
	if !v.Empty() {
		t.Fatalf("card valid through end of current month: %v", v)
	}

	v = Violations{}
	CardExpiry("m", "y", 8, 2026, now, v)
	if v["y"] != "card_expired" {
		t.Fatalf("expected expiry violation, got %v", v)
	}

	v = Violations{}
	CardExpiry("m", "y", 13, 2026, now, v)
	if v["m"] != "invalid_month" {
		t.Fatalf("expected month violation, got %v", v)
	}

	// Two-digit years are normalized.
	v = Violations{}
	CardExpiry("m", "y", 12, 31, now, v)
	if !v.Empty() {
		t.Fatalf("12/31 should be valid: %v", v)
	}
}
