package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value decoded from either a JSON number or a numeric
// string. Values ParseAmount rejects decode as zero.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	value, ok := ParseAmount(raw)
	if !ok {
		*a = 0
		return nil
	}
	*a = Amount(value.InexactFloat64())
	return nil
}

// Float64 returns the amount as a float
func (a Amount) Float64() float64 {
	return float64(a)
}

// ParseAmount converts a decoded JSON value into a non-negative decimal.
// It reports false for nulls, booleans, containers, non-numeric strings,
// negative values and values outside the float64 range.
func ParseAmount(raw any) (decimal.Decimal, bool) {
	var (
		value decimal.Decimal
		err   error
	)
	switch v := raw.(type) {
	case json.Number:
		value, err = decimal.NewFromString(v.String())
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false
		}
		value = decimal.NewFromFloat(v)
	case float32:
		return ParseAmount(float64(v))
	case int:
		value = decimal.NewFromInt(int64(v))
	case int64:
		value = decimal.NewFromInt(v)
	case string:
		value, err = decimal.NewFromString(strings.TrimSpace(v))
	default:
		return decimal.Zero, false
	}
	if err != nil || value.IsNegative() {
		return decimal.Zero, false
	}
	if f := value.InexactFloat64(); math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return value, true
}

// OrderAmount extracts the total_amount of a raw upstream order. A missing
// field counts as zero; anything unparseable is reported as not ok.
func OrderAmount(order any) (decimal.Decimal, bool) {
	fields, ok := order.(map[string]any)
	if !ok {
		return decimal.Zero, false
	}
	raw, present := fields["total_amount"]
	if !present {
		return decimal.Zero, true
	}
	return ParseAmount(raw)
}
