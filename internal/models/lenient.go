package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// decodeValue decodes a single JSON value keeping numbers as json.Number
func decodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// looseString accepts a JSON string or number. Other values decode as "".
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	raw, err := decodeValue(data)
	if err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		*s = looseString(v)
	case json.Number:
		*s = looseString(v.String())
	default:
		*s = ""
	}
	return nil
}

// looseNumber accepts a finite, non-negative JSON number or numeric string.
// Anything else leaves it unset.
type looseNumber struct {
	value *float64
}

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	raw, err := decodeValue(data)
	if err != nil {
		return err
	}
	n.value = nil

	var text string
	switch v := raw.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	n.value = &f
	return nil
}

func (n looseNumber) int() int {
	if n.value == nil {
		return 0
	}
	return int(*n.value)
}

// looseBool accepts a JSON bool, "true"/"false" style strings or a number,
// where non-zero is true
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	raw, err := decodeValue(data)
	if err != nil {
		return err
	}
	switch v := raw.(type) {
	case bool:
		*b = looseBool(v)
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(v))
		*b = looseBool(parsed)
	case json.Number:
		f, _ := v.Float64()
		*b = f != 0
	default:
		*b = false
	}
	return nil
}

// looseTimestamp parses like Timestamp but leaves the value zero instead of
// failing on anything unrecognised
type looseTimestamp struct {
	Timestamp
}

func (t *looseTimestamp) UnmarshalJSON(data []byte) error {
	if err := t.Timestamp.UnmarshalJSON(data); err != nil {
		t.Timestamp = Timestamp{}
	}
	return nil
}
