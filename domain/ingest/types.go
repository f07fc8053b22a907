package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value represents a single raw cell from an externally supplied table.
// It is a tagged union: text, numeric, or missing. All downstream cleaning
// operates on the textual projection so the three arms behave uniformly.
type Value struct {
	Type       ValueType `json:"type"`
	TextVal    *string   `json:"text_val,omitempty"`
	NumericVal *float64  `json:"numeric_val,omitempty"`
	IsMissing  bool      `json:"is_missing"`
}

// ValueType defines the storage type for raw cells
type ValueType string

const (
	ValueTypeText    ValueType = "text"
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeMissing ValueType = "missing"
)

// Column is an ordered sequence of raw cells from one named table column.
type Column []Value

// NewTextValue creates a text value. An empty string is a missing marker.
func NewTextValue(s string) Value {
	if s == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeText, TextVal: &s}
}

// NewNumericValue creates a numeric value. NaN and infinities are treated
// as missing since no finite float can represent them downstream.
func NewNumericValue(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeNumeric, NumericVal: &n}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing, IsMissing: true}
}

// FromAny coerces an untyped cell (as produced by file readers or database
// scans) into the tagged union.
func FromAny(raw interface{}) Value {
	if raw == nil {
		return NewMissingValue()
	}

	switch v := raw.(type) {
	case string:
		return NewTextValue(strings.TrimSpace(v))
	case float64:
		return NewNumericValue(v)
	case float32:
		return NewNumericValue(float64(v))
	case int:
		return NewNumericValue(float64(v))
	case int32:
		return NewNumericValue(float64(v))
	case int64:
		return NewNumericValue(float64(v))
	case bool:
		if v {
			return NewNumericValue(1)
		}
		return NewNumericValue(0)
	default:
		return NewTextValue(strings.TrimSpace(fmt.Sprintf("%v", v)))
	}
}

// Text returns the textual projection of the value. Missing values project
// to the empty string; numerics render with enough precision to round-trip.
func (v Value) Text() string {
	switch v.Type {
	case ValueTypeText:
		if v.TextVal != nil {
			return *v.TextVal
		}
	case ValueTypeNumeric:
		if v.NumericVal != nil {
			// 'f' keeps large values out of scientific notation so the
			// digit-strip pass downstream sees every digit.
			return strconv.FormatFloat(*v.NumericVal, 'f', -1, 64)
		}
	}
	return ""
}

// String returns a display representation of the value
func (v Value) String() string {
	if v.Type == ValueTypeMissing {
		return "<missing>"
	}
	return v.Text()
}

// ColumnFromAny builds a Column from a slice of untyped cells.
func ColumnFromAny(raw []interface{}) Column {
	col := make(Column, len(raw))
	for i, cell := range raw {
		col[i] = FromAny(cell)
	}
	return col
}

// ColumnFromStrings builds a Column from string cells (CSV/Excel rows).
func ColumnFromStrings(raw []string) Column {
	col := make(Column, len(raw))
	for i, cell := range raw {
		col[i] = NewTextValue(strings.TrimSpace(cell))
	}
	return col
}
