package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type valueKind uint8

const (
	kindMissing valueKind = iota
	kindNumber
	kindCategory
)

// Value is a single observation: a number, a category label, or Missing.
// The zero Value is Missing.
type Value struct {
	kind valueKind
	num  float64
	text string
}

// Missing returns the absent value.
func Missing() Value { return Value{} }

// Number wraps a continuous measurement. NaN and infinities are Missing.
func Number(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{kind: kindNumber, num: v}
}

// Category wraps a categorical label. The empty label is Missing.
func Category(label string) Value {
	if label == "" {
		return Value{}
	}
	return Value{kind: kindCategory, text: label}
}

// ParseValue parses a raw field. Empty fields and NaN markers are Missing; a
// numeric field that fails to parse is Missing as well.
func ParseValue(field string, categorical bool) Value {
	field = strings.TrimSpace(field)
	switch strings.ToLower(field) {
	case "", "nan", "na", "null":
		return Value{}
	}
	if categorical {
		// Readers may reuse the line buffer the field points into.
		return Category(strings.Clone(field))
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return Value{}
	}
	return Number(v)
}

func (v Value) IsMissing() bool { return v.kind == kindMissing }

// Float returns the numeric content. Category labels that spell a number
// (land cover class codes) are parsed, so numeric sanitization rules apply to them.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case kindNumber:
		return v.num, true
	case kindCategory:
		f, err := strconv.ParseFloat(v.text, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// String renders the value for tabular output; Missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindCategory:
		return v.text
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.num == o.num && v.text == o.text
}

// MarshalJSON encodes numbers as JSON numbers, categories as strings and
// Missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		return json.Marshal(v.num)
	case kindCategory:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	switch t := raw.(type) {
	case nil:
		*v = Missing()
	case float64:
		*v = Number(t)
	case string:
		*v = Category(t)
	default:
		return fmt.Errorf("decode value: unsupported JSON type %T", raw)
	}
	return nil
}
