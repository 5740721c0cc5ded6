package format

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

func TestCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "$0"},
		{"1234.5", "$1,235"},
		{"1234.49", "$1,234"},
		{"3200.00", "$3,200"},
		{"-50", "-$50"},
		{"-0.4", "$0"},
		{"-1234.5", "-$1,235"},
		{"1000000", "$1,000,000"},
		{"9223372036854775807", "$9,223,372,036,854,775,807"},
		{"-9223372036854775808", "-$9,223,372,036,854,775,808"},
		{"123456789012345678901234.5", "$123,456,789,012,345,678,901,235"},
		{"-123456789012345678901234.5", "-$123,456,789,012,345,678,901,235"},
	}
	for _, c := range cases {
		if got := Currency(decimal.RequireFromString(c.in)); got != c.want {
			t.Errorf("Currency(%s) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCurrencyString(t *testing.T) {
	got, err := CurrencyString("10000.00")
	if err != nil || got != "$10,000" {
		t.Fatalf("CurrencyString = %q, %v", got, err)
	}
	if _, err := CurrencyString("twelve"); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPercent(t *testing.T) {
	cases := map[float64]string{0: "0%", 33.4: "33%", 66.5: "67%", 100: "100%", -12.5: "-13%", 1e20: "100000000000000000000%"}
	for in, want := range cases {
		got, err := Percent(in)
		if err != nil || got != want {
			t.Errorf("Percent(%v) = %q, %v, want %q", in, got, err, want)
		}
	}
	for _, in := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got, err := Percent(in); !errors.Is(err, core.ErrInvalidInput) || got != "" {
			t.Errorf("Percent(%v) = %q, %v, want ErrInvalidInput", in, got, err)
		}
	}
	if got := PercentDecimal(decimal.RequireFromString("37.037")); got != "37%" {
		t.Errorf("PercentDecimal = %q", got)
	}
}

func TestDateRange(t *testing.T) {
	same := DateRange(core.NewDate(2025, 1, 2), core.NewDate(2025, 1, 15))
	if same != "Jan 2 – Jan 15" {
		t.Errorf("same year = %q", same)
	}
	cross := DateRange(core.NewDate(2024, 12, 28), core.NewDate(2025, 1, 10))
	if cross != "Dec 28, 2024 – Jan 10, 2025" {
		t.Errorf("cross year = %q", cross)
	}
	if got := ShortDate(core.NewDate(2025, 3, 9)); got != "Mar 9" {
		t.Errorf("ShortDate = %q", got)
	}
}
