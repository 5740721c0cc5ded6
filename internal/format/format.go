// Package format renders amounts and dates for display.
package format

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

const (
	shortLayout = "Jan 2"
	longLayout  = "Jan 2, 2006"
)

// Currency renders whole US dollars with thousands separators, rounding
// half away from zero: 1234.5 -> "$1,235", -50 -> "-$50".
// Amounts of any magnitude are rendered in full.
func Currency(amount decimal.Decimal) string {
	n := amount.Round(0).BigInt()
	if n.Sign() < 0 {
		return "-$" + humanize.BigComma(n.Neg(n))
	}
	return "$" + humanize.BigComma(n)
}

// CurrencyString parses a decimal string and formats it like Currency.
func CurrencyString(s string) (string, error) {
	d, err := core.ParseAmount(s)
	if err != nil {
		return "", err
	}
	return Currency(d), nil
}

// Percent rounds to the nearest integer and appends "%". NaN and infinities
// are rejected with core.ErrInvalidInput.
func Percent(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("%w: percentage %v is not a finite number", core.ErrInvalidInput, v)
	}
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64) + "%", nil
}

// PercentDecimal is Percent for decimal values.
func PercentDecimal(v decimal.Decimal) string {
	return v.Round(0).String() + "%"
}

// ShortDate renders a day as "Jan 2".
func ShortDate(d core.Date) string {
	return d.Format(shortLayout)
}

// DateRange renders "Jan 2 – Jan 15". The year is shown on both ends when
// they fall in different years.
func DateRange(start, end core.Date) string {
	layout := shortLayout
	if start.Year() != end.Year() {
		layout = longLayout
	}
	return start.Format(layout) + " – " + end.Format(layout)
}
