package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"3200.00", "3200", true},
		{"  12.34 ", "12.34", true},
		{"$1,234.56", "1234.56", true},
		{"-50", "-50", true},
		{"-$7.5", "-7.5", true},
		{"0", "0", true},
		{"", "", false},
		{"abc", "", false},
		{"--5", "", false},
		{"NaN", "", false},
		{"1.2.3", "", false},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		if c.ok {
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected err: %v", c.in, err)
			}
			if got.String() != c.want {
				t.Fatalf("ParseAmount(%q) = %s, want %s", c.in, got.String(), c.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("ParseAmount(%q) expected ErrInvalidInput, got %v", c.in, err)
		}
	}
}

func TestParseNonNegativeAmount(t *testing.T) {
	if _, err := ParseNonNegativeAmount("-1"); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if d, err := ParseNonNegativeAmount("10000.00"); err != nil || d.String() != "10000" {
		t.Fatalf("ParseNonNegativeAmount = %s, %v", d, err)
	}
}

func TestParsePercent(t *testing.T) {
	if d, err := ParsePercent("35%"); err != nil || d.String() != "35" {
		t.Fatalf("ParsePercent(35%%) = %s, %v", d, err)
	}
	for _, in := range []string{"101", "-1", "x"} {
		if _, err := ParsePercent(in); !errors.Is(err, ErrInvalidPercentage) {
			t.Fatalf("ParsePercent(%q) expected ErrInvalidPercentage, got %v", in, err)
		}
	}
}
