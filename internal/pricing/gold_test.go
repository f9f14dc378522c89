package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestGoldWeight(t *testing.T) {
	cases := []struct {
		amount string
		rate   string
		want   string
	}{
		{"10000", "7200", "1.389"},
		{"7200", "7200", "1"},
		{"0", "7200", "0"},
		{"1", "3", "0.333"},
		{"2", "3", "0.667"},
		{"5000", "0", "0"},
		{"5000", "-10", "0"},
	}
	for _, tc := range cases {
		got := GoldWeight(decimal.RequireFromString(tc.amount), decimal.RequireFromString(tc.rate))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("GoldWeight(%s, %s): expected %s, got %s", tc.amount, tc.rate, tc.want, got)
		}
	}
}
