// Package moneypkg converts between decimal amount strings and integer minor units.
package moneypkg

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// minorDigits is the number of fractional digits of every supported currency.
const minorDigits = 2

var (
	// ErrInvalidFormat indicates that the amount is not a decimal number.
	ErrInvalidFormat = errors.New("amount is not a decimal number")
	// ErrTooPrecise indicates that the amount has more fractional digits than the currency allows.
	ErrTooPrecise = errors.New("amount has too many decimal places")
	// ErrOutOfRange indicates that the amount does not fit into minor units.
	ErrOutOfRange = errors.New("amount out of range")
)

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// ToMinor parses a decimal amount like "200.50" into minor units (20050).
//
// Sign is preserved; callers decide whether non-positive amounts are valid.
func ToMinor(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, ErrInvalidFormat
	}

	if !d.Equal(d.Truncate(minorDigits)) {
		return 0, ErrTooPrecise
	}

	minor := d.Shift(minorDigits)
	if minor.Abs().GreaterThan(maxMinor) {
		return 0, ErrOutOfRange
	}

	return minor.IntPart(), nil
}

// Format renders minor units as a decimal string with fixed fractional digits.
func Format(minor int64) string {
	return decimal.New(minor, -minorDigits).StringFixed(minorDigits)
}
