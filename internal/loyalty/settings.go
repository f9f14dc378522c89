// Package loyalty converts between loyalty points and currency for a shop's
// configured programme.
package loyalty

import (
	"strings"

	"github.com/shopspring/decimal"
)

// EarningType selects the accrual policy of a loyalty programme.
type EarningType string

const (
	EarningFlat       EarningType = "flat"
	EarningPercentage EarningType = "percentage"
)

// ParseEarningType normalises a stored earning type. Unknown values are
// returned as-is and earn nothing.
func ParseEarningType(raw string) EarningType {
	return EarningType(strings.ToLower(strings.TrimSpace(raw)))
}

// Settings is a shop's loyalty configuration. Only the field matching
// EarningType is consulted when accruing points.
type Settings struct {
	RedemptionConversionRate decimal.Decimal `json:"redemptionConversionRate"`
	EarningType              EarningType     `json:"earningType"`
	FlatPointsRatio          decimal.Decimal `json:"flatPointsRatio"`
	PercentageBack           decimal.Decimal `json:"percentageBack"`
}

// Option holds Settings when a shop has a loyalty programme configured.
type Option struct {
	settings Settings
	ok       bool
}

// Some wraps configured settings.
func Some(s Settings) Option { return Option{settings: s, ok: true} }

// None represents a shop without a loyalty programme.
func None() Option { return Option{} }

// Get returns the settings and whether they are present.
func (o Option) Get() (Settings, bool) { return o.settings, o.ok }

// IsSome reports whether settings are present.
func (o Option) IsSome() bool { return o.ok }
