package pricing

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// SafeNumber coerces a loosely typed value into a decimal. Values that are not
// finite numbers (nil, NaN, infinities, blank or malformed strings, unknown
// types) collapse to zero so a calculation never fails on bad input.
func SafeNumber(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case decimal.NullDecimal:
		if !n.Valid {
			return decimal.Zero
		}
		return n.Decimal
	case float64:
		return fromFloat(n)
	case float32:
		return fromFloat(float64(n))
	case *float64:
		if n == nil {
			return decimal.Zero
		}
		return fromFloat(*n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt32(n)
	case int64:
		return decimal.NewFromInt(n)
	case *int64:
		if n == nil {
			return decimal.Zero
		}
		return decimal.NewFromInt(*n)
	case uint:
		return decimal.NewFromUint64(uint64(n))
	case uint32:
		return decimal.NewFromUint64(uint64(n))
	case uint64:
		return decimal.NewFromUint64(n)
	case bool:
		if n {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	case json.Number:
		return parseDecimal(n.String())
	case string:
		return parseDecimal(n)
	case *string:
		if n == nil {
			return decimal.Zero
		}
		return parseDecimal(*n)
	default:
		return decimal.Zero
	}
}

// NonNegative clamps d to zero when it is negative.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func parseDecimal(s string) decimal.Decimal {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero
	}
	return d
}
