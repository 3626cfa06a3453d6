// Package money converts between rupee strings and paise (minor units).
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are not plain decimals.
var ErrInvalidAmount = errors.New("invalid amount format, use e.g. '123.45'")

var hundred = decimal.NewFromInt(100)

// ToMinor parses a rupee string ("250.00") into paise, rounding half away
// from zero past two decimals.
func ToMinor(rupees string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(rupees))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return FromDecimal(d)
}

// FromDecimal converts an amount to paise. Amounts whose paise value does
// not fit in an int64 are rejected.
func FromDecimal(d decimal.Decimal) (int64, error) {
	p := d.Mul(hundred).Round(0)
	if !p.BigInt().IsInt64() {
		return 0, ErrInvalidAmount
	}
	return p.IntPart(), nil
}

// FormatMinor renders paise as a rupee string with two decimals.
func FormatMinor(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

// MinorToFloat renders paise as rupees for chart payloads.
func MinorToFloat(minor int64) float64 {
	return decimal.New(minor, -2).InexactFloat64()
}
