// Package core provides money parsing and handling utilities.
//
// Amounts travel as decimal strings and are held as decimal.Decimal so that
// percentages and allocations never pick up binary floating-point error.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a Decimal.
//
// Surrounding whitespace, a leading "$" and "," thousands separators are
// accepted. Signs are kept, so "-12.50" is a valid expense amount.
//
// Examples:
//
//	ParseAmount("3200.00")   -> 3200
//	ParseAmount("$1,234.56") -> 1234.56
//	ParseAmount("-50")       -> -50
//	ParseAmount("abc")       -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// ParseNonNegativeAmount is ParseAmount for fields that may not go below zero,
// such as incomes and goal targets.
func ParseNonNegativeAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNegativeAmount, s)
	}
	return d, nil
}

// ParsePercent parses a percentage in [0, 100].
func ParsePercent(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPercentage, s)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPercentage, s)
	}
	return d, nil
}
