package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "100.00", Format(10000, "USD"))
	assert.Equal(t, "0.01", Format(1, "USD"))
	assert.Equal(t, "0.00", Format(0, "EUR"))
	assert.Equal(t, "-12.34", Format(-1234, "USD"))
	assert.Equal(t, "1500", Format(1500, "JPY"), "zero-decimal currency")
	assert.Equal(t, "1500", Format(1500, "jpy"), "currency casing")
}

func TestFromCents(t *testing.T) {
	assert.Equal(t, "123.45", FromCents(12345, "USD").String())
	assert.Equal(t, "12345", FromCents(12345, "KRW").String())
}
