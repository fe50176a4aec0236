package model

import (
	"encoding/json"
	"strconv"
)

// ValueKind discriminates the three states a cell can be in.
type ValueKind uint8

const (
	KindMissing ValueKind = iota
	KindNumber
	KindText
)

// Value is a single spreadsheet cell. A missing cell, a zero and an
// unparsed string are distinct states.
type Value struct {
	kind ValueKind
	num  float64
	text string
}

// Missing returns the absent value.
func Missing() Value { return Value{} }

// Number wraps a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text wraps a string value. Empty strings are treated as missing.
func Text(s string) Value {
	if s == "" {
		return Missing()
	}
	return Value{kind: KindText, text: s}
}

// Kind returns the discriminator.
func (v Value) Kind() ValueKind { return v.kind }

// IsMissing reports whether the cell holds no data.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// IsNumber reports whether the cell holds a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsText reports whether the cell holds unparsed text.
func (v Value) IsText() bool { return v.kind == KindText }

// Float returns the numeric value and true if the cell is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Str returns the text value and true if the cell is text.
func (v Value) Str() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// String renders the value for tabular output. Missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	return v == o
}

// MarshalJSON encodes numbers as JSON numbers, text as strings and missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Text(s)
	return nil
}
