package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSafeNumber(t *testing.T) {
	fivePointFive := 5.5
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "0"},
		{"float", 12.25, "12.25"},
		{"nan", math.NaN(), "0"},
		{"inf", math.Inf(1), "0"},
		{"int", 42, "42"},
		{"string", " 1500.75 ", "1500.75"},
		{"blank string", "   ", "0"},
		{"garbage string", "12abc", "0"},
		{"json number", json.Number("3.5"), "3.5"},
		{"pointer", &fivePointFive, "5.5"},
		{"nil pointer", (*float64)(nil), "0"},
		{"decimal", decimal.RequireFromString("9.99"), "9.99"},
		{"unsupported", struct{}{}, "0"},
		{"true", true, "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SafeNumber(tc.in)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
