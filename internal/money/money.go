// Package money converts between decimal strings and int64 minor units (cents).
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// MaxMinor caps any single amount at one trillion major units.
const MaxMinor int64 = 100_000_000_000_000

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(MaxMinor)
)

func ParseMinor(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return FromDecimal(value)
}

// FromDecimal rejects values that cannot be expressed in whole cents and
// values whose magnitude exceeds MaxMinor.
func FromDecimal(value decimal.Decimal) (int64, error) {
	minor := value.Mul(hundred)
	if !minor.IsInteger() {
		return 0, ErrTooManyDecimals
	}
	if minor.Abs().GreaterThan(maxMinor) {
		return 0, ErrInvalidAmount
	}
	return minor.IntPart(), nil
}

// ParsePositiveMinor is ParseMinor restricted to amounts above zero.
func ParsePositiveMinor(input string) (int64, error) {
	minor, err := ParseMinor(input)
	if err != nil {
		return 0, err
	}
	if minor <= 0 {
		return 0, ErrInvalidAmount
	}
	return minor, nil
}

func FormatMinor(value int64) string {
	return decimal.New(value, -2).StringFixed(2)
}
