package summary

import (
	"math"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"currency string", "$1,234.50", "$1,235"},
		{"plain float", 1234.5, "$1,235"},
		{"integer", 50000, "$50,000"},
		{"large value", 12345678.0, "$12,345,678"},
		{"nil", nil, "N/A"},
		{"na string", "N/A", "N/A"},
		{"empty string", "", "N/A"},
		{"garbage", "about a million", "N/A"},
		{"nan", math.NaN(), "N/A"},
		{"positive inf", math.Inf(1), "N/A"},
		{"small value", 999.0, "$999"},
		{"exact thousand", 1000.0, "$1,000"},
		{"half rounds up", 2.5, "$3"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatAmount(tc.input); got != tc.want {
				t.Fatalf("FormatAmount(%v) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	if _, ok := ParseAmount("nan"); ok {
		t.Fatal("expected nan string to be rejected")
	}
	if amount, ok := ParseAmount(" $2,500 "); !ok || amount != 2500 {
		t.Fatalf("ParseAmount($2,500) = %v, %v", amount, ok)
	}
	if amount, ok := ParseAmount(int64(42)); !ok || amount != 42 {
		t.Fatalf("ParseAmount(int64) = %v, %v", amount, ok)
	}
}
