package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts outside these bounds are rejected before any arithmetic runs on them.
const (
	maxAmountExponent = 12
	maxAmountDigits   = 20
)

// ParseAmount parses decimal text. Blank, unparsable or out of range text
// yields an invalid (null) amount instead of an error.
func ParseAmount(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	n := decimal.NewNullDecimal(d)
	if !InRange(n) {
		return decimal.NullDecimal{}
	}
	return n
}

// InRange reports whether n is null or has at most maxAmountDigits significant
// digits and an exponent within maxAmountExponent of zero.
func InRange(n decimal.NullDecimal) bool {
	if !n.Valid {
		return true
	}
	exp := n.Decimal.Exponent()
	if exp > maxAmountExponent || exp < -maxAmountExponent {
		return false
	}
	return n.Decimal.NumDigits() <= maxAmountDigits
}

// OrZero returns the amount, or zero when it is null.
func OrZero(n decimal.NullDecimal) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}

// Positive reports whether n is present and greater than zero.
func Positive(n decimal.NullDecimal) bool {
	return n.Valid && n.Decimal.IsPositive()
}

// FormatAmount renders n for storage or text input; null renders as "".
func FormatAmount(n decimal.NullDecimal) string {
	if !n.Valid {
		return ""
	}
	return n.Decimal.String()
}
