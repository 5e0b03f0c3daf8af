package models

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a currency total rounded to cents. It encodes as a JSON number
// with exactly two decimal places, e.g. 10.00.
type Money struct {
	value decimal.Decimal
}

// NewMoney rounds d to cents
func NewMoney(d decimal.Decimal) Money {
	return Money{value: d.Round(2)}
}

// Decimal returns the exact value
func (m Money) Decimal() decimal.Decimal {
	return m.value
}

// Float64 returns the nearest float, which may be infinite for huge totals
func (m Money) Float64() float64 {
	return m.value.InexactFloat64()
}

func (m Money) String() string {
	return m.value.StringFixed(2)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler, accepting numbers and numeric strings
func (m *Money) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	value, err := decimal.NewFromString(string(bytes.Trim(data, `"`)))
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = NewMoney(value)
	return nil
}
