// Package scheme forecasts payouts for gold-savings scheme enrollments that
// are about to mature.
package scheme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CalculationType describes how an enrollment accumulates value.
type CalculationType string

const (
	WeightAccumulation CalculationType = "WEIGHT_ACCUMULATION"
	FlatAmount         CalculationType = "FLAT_AMOUNT"
	FixedDuration      CalculationType = "FIXED_DURATION"
)

// MonthLabelLayout formats bucket labels such as "Mar 2025".
const MonthLabelLayout = "Jan 2006"

// Enrollment is a read-only snapshot of a customer's position in a scheme.
type Enrollment struct {
	ID                string          `json:"id"`
	MaturityDate      time.Time       `json:"maturityDate"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	AccumulatedWeight decimal.Decimal `json:"accumulatedWeight"`
	Status            string          `json:"status"`
	CalculationType   CalculationType `json:"calculationType"`
	CustomerName      string          `json:"customerName"`
	CustomerPhone     string          `json:"customerPhone"`
	SchemeName        string          `json:"schemeName"`
}

// ForecastItem is an enrollment with its expected payout.
type ForecastItem struct {
	Enrollment
	ExpectedPayoutValue decimal.Decimal `json:"expectedPayoutValue"`
}

// MonthBucket is the payout total for one calendar month.
type MonthBucket struct {
	Label string
	Total decimal.Decimal
}

// Breakdown lists month buckets in order of first appearance. It encodes as a
// JSON object whose keys keep that order.
type Breakdown []MonthBucket

// Summary aggregates a forecast.
type Summary struct {
	TotalCount         int             `json:"totalCount"`
	TotalGoldWeight    decimal.Decimal `json:"totalGoldWeight"`
	TotalCashLiability decimal.Decimal `json:"totalCashLiability"`
	MonthlyBreakdown   Breakdown       `json:"monthlyBreakdown"`
}

// Result bundles forecast items and their summary.
type Result struct {
	Forecast []ForecastItem `json:"forecast"`
	Summary  Summary        `json:"summary"`
}

// ExpectedPayout values an enrollment at maturity. Weight schemes are valued
// at the estimated gold rate; every other scheme pays out what was paid in.
func ExpectedPayout(e Enrollment, estimatedGoldRate decimal.Decimal) decimal.Decimal {
	if e.CalculationType == WeightAccumulation {
		if !estimatedGoldRate.IsPositive() {
			return decimal.Zero
		}
		return e.AccumulatedWeight.Mul(estimatedGoldRate)
	}
	return e.TotalPaid
}

// Forecast computes per-enrollment payouts and folds them into a summary.
// Enrollments are expected to be filtered by status and date window already.
// An enrollment without a maturity date is counted but not bucketed.
func Forecast(enrollments []Enrollment, estimatedGoldRate decimal.Decimal) ([]ForecastItem, Summary) {
	items := make([]ForecastItem, 0, len(enrollments))
	summary := Summary{
		TotalGoldWeight:    decimal.Zero,
		TotalCashLiability: decimal.Zero,
		MonthlyBreakdown:   Breakdown{},
	}
	positions := make(map[string]int)

	for _, e := range enrollments {
		payout := ExpectedPayout(e, estimatedGoldRate)
		items = append(items, ForecastItem{Enrollment: e, ExpectedPayoutValue: payout})

		if e.CalculationType == WeightAccumulation {
			summary.TotalGoldWeight = summary.TotalGoldWeight.Add(e.AccumulatedWeight)
		} else {
			summary.TotalCashLiability = summary.TotalCashLiability.Add(payout)
		}

		if e.MaturityDate.IsZero() {
			continue
		}
		label := e.MaturityDate.Format(MonthLabelLayout)
		if idx, ok := positions[label]; ok {
			summary.MonthlyBreakdown[idx].Total = summary.MonthlyBreakdown[idx].Total.Add(payout)
			continue
		}
		positions[label] = len(summary.MonthlyBreakdown)
		summary.MonthlyBreakdown = append(summary.MonthlyBreakdown, MonthBucket{Label: label, Total: payout})
	}
	summary.TotalCount = len(items)
	return items, summary
}

// Get returns the total for label.
func (b Breakdown) Get(label string) (decimal.Decimal, bool) {
	for _, bucket := range b {
		if bucket.Label == label {
			return bucket.Total, true
		}
	}
	return decimal.Zero, false
}

// MarshalJSON implements json.Marshaler.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bucket := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(bucket.Label)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(bucket.Total)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping key order.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*b = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("monthly breakdown: expected object, got %v", tok)
	}
	out := Breakdown{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("monthly breakdown: expected key, got %v", keyTok)
		}
		var total decimal.Decimal
		if err := dec.Decode(&total); err != nil {
			return fmt.Errorf("monthly breakdown %q: %w", label, err)
		}
		out = append(out, MonthBucket{Label: label, Total: total})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*b = out
	return nil
}
