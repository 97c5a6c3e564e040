package batch

import (
	"encoding/json"
	"strconv"

	"github.com/elinasafina23/EBR/errors"
)

// Kind discriminates the scalar variants a Value can hold.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a tagged scalar variant: string, number, boolean, or null.
// Batch data payloads are schema-less but flat; nested arrays and objects
// are rejected at the JSON boundary.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Data is the free-form contextual payload of a batch record.
type Data map[string]Value

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// StringValue returns the string payload; ok is false for other kinds.
func (v Value) StringValue() (string, bool) { return v.str, v.kind == KindString }

// NumberValue returns the numeric payload; ok is false for other kinds.
func (v Value) NumberValue() (float64, bool) { return v.num, v.kind == KindNumber }

// BoolValue returns the boolean payload; ok is false for other kinds.
func (v Value) BoolValue() (bool, bool) { return v.b, v.kind == KindBool }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Equal reports deep equality of two values.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	}
	return true // both null
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. Only JSON scalars are accepted;
// arrays and objects fail with an invalid-request error.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := trimLeadingSpace(data)
	if len(trimmed) == 0 {
		return errors.Wrap(errors.ErrInvalidRequest, "empty JSON value")
	}

	switch trimmed[0] {
	case '[', '{':
		return errors.Wrap(errors.ErrInvalidRequest, "batch data values must be scalars, got nested structure")
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "invalid string value")
		}
		*v = String(s)
		return nil
	case 'n':
		if string(trimmed) != "null" {
			return errors.Newf("invalid JSON value %q", string(data))
		}
		*v = Null()
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return errors.Wrap(err, "invalid boolean value")
		}
		*v = Bool(b)
		return nil
	default:
		n, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil {
			return errors.Wrapf(err, "invalid numeric value %q", string(data))
		}
		*v = Number(n)
		return nil
	}
}

// FromAny coerces a JSON-decoded interface value into a Value.
// Non-scalar input is reported via ok=false.
func FromAny(raw any) (Value, bool) {
	switch t := raw.(type) {
	case nil:
		return Null(), true
	case string:
		return String(t), true
	case float64:
		return Number(t), true
	case int:
		return Number(float64(t)), true
	case int64:
		return Number(float64(t)), true
	case bool:
		return Bool(t), true
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Null(), false
		}
		return Number(n), true
	default:
		return Null(), false
	}
}

func trimLeadingSpace(data []byte) []byte {
	i := 0
	for i < len(data) {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return data[i:]
		}
	}
	return nil
}
