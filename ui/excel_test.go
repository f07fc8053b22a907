package ui

import (
	"testing"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		value    float64
		currency string
		expected string
	}{
		{1234.56, "AED", "AED 1,234.56"},
		{0, "AED", "AED 0.00"},
		{50, "SAR", "SAR 50.00"},
		{1000000, "AED", "AED 1,000,000.00"},
		{-42.5, "AED", "AED -42.50"},
		{1.999, "AED", "AED 2.00"},
	}

	for _, test := range tests {
		if got := FormatCurrency(test.value, test.currency); got != test.expected {
			t.Errorf("FormatCurrency(%v, %s) = %q, want %q", test.value, test.currency, got, test.expected)
		}
	}
}
