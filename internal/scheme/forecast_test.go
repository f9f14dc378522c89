package scheme

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestForecastMixedSchemes(t *testing.T) {
	enrollments := []Enrollment{
		{ID: "a", CalculationType: WeightAccumulation, AccumulatedWeight: decimal.NewFromInt(10), TotalPaid: decimal.NewFromInt(50000), MaturityDate: day("2025-03-10")},
		{ID: "b", CalculationType: FlatAmount, TotalPaid: decimal.NewFromInt(12000), MaturityDate: day("2025-03-28")},
	}

	items, summary := Forecast(enrollments, decimal.NewFromInt(7200))

	require.Len(t, items, 2)
	require.Equal(t, 2, summary.TotalCount)
	require.True(t, summary.TotalGoldWeight.Equal(decimal.NewFromInt(10)))
	require.True(t, summary.TotalCashLiability.Equal(decimal.NewFromInt(12000)))
	require.True(t, items[0].ExpectedPayoutValue.Equal(decimal.NewFromInt(72000)))
	require.True(t, items[1].ExpectedPayoutValue.Equal(decimal.NewFromInt(12000)))

	total, ok := summary.MonthlyBreakdown.Get("Mar 2025")
	require.True(t, ok)
	require.True(t, total.Equal(decimal.NewFromInt(84000)), "march total %s", total)
}

func TestForecastBucketsInFirstSeenOrder(t *testing.T) {
	enrollments := []Enrollment{
		{CalculationType: FixedDuration, TotalPaid: decimal.NewFromInt(100), MaturityDate: day("2025-05-01")},
		{CalculationType: FlatAmount, TotalPaid: decimal.NewFromInt(200), MaturityDate: day("2025-04-15")},
		{CalculationType: FlatAmount, TotalPaid: decimal.NewFromInt(300), MaturityDate: day("2025-05-20")},
	}

	_, summary := Forecast(enrollments, decimal.NewFromInt(7000))

	require.Len(t, summary.MonthlyBreakdown, 2)
	require.Equal(t, "May 2025", summary.MonthlyBreakdown[0].Label)
	require.Equal(t, "Apr 2025", summary.MonthlyBreakdown[1].Label)
	require.True(t, summary.MonthlyBreakdown[0].Total.Equal(decimal.NewFromInt(400)))
}

func TestForecastSkipsUndatedBuckets(t *testing.T) {
	enrollments := []Enrollment{
		{CalculationType: FlatAmount, TotalPaid: decimal.NewFromInt(500)},
	}
	_, summary := Forecast(enrollments, decimal.NewFromInt(7000))
	require.Equal(t, 1, summary.TotalCount)
	require.Empty(t, summary.MonthlyBreakdown)
	require.True(t, summary.TotalCashLiability.Equal(decimal.NewFromInt(500)))
}

func TestForecastEmpty(t *testing.T) {
	items, summary := Forecast(nil, decimal.NewFromInt(7000))
	require.Empty(t, items)
	require.Equal(t, 0, summary.TotalCount)
	require.True(t, summary.TotalGoldWeight.IsZero())
}

func TestBreakdownJSONKeepsOrder(t *testing.T) {
	b := Breakdown{
		{Label: "Jun 2025", Total: decimal.NewFromInt(5)},
		{Label: "Feb 2025", Total: decimal.RequireFromString("7.5")},
	}
	data, err := json.Marshal(b)
	require.NoError(t, err)
	require.Equal(t, `{"Jun 2025":"5","Feb 2025":"7.5"}`, string(data))

	var decoded Breakdown
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "Jun 2025", decoded[0].Label)
	require.True(t, decoded[1].Total.Equal(decimal.RequireFromString("7.5")))
}
