// Package types contains the row data model shared across multiple packages
// to avoid import cycles.
package types

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Kind identifies which variant of a Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindInt
	KindFloat
	KindBool
	KindTime
	KindRaw
)

// String returns a short name for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindRaw:
		return "raw"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a single column value as scanned from the source driver. Exactly
// one variant is populated, selected by Kind. The zero Value is NULL, so a
// column a record never held still writes out as SQL NULL.
type Value struct {
	kind Kind
	text string
	i    int64
	f    float64
	b    bool
	t    time.Time
	raw  interface{}
}

// NullValue returns the NULL value.
func NullValue() Value { return Value{} }

// TextValue wraps a string.
func TextValue(s string) Value { return Value{kind: KindText, text: s} }

// IntValue wraps an int64.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue wraps a float64.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// TimeValue wraps a time.Time.
func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t} }

// RawValue wraps a driver value of a type the model does not normalize.
func RawValue(v interface{}) Value { return Value{kind: KindRaw, raw: v} }

// FromDriver normalizes a value scanned through database/sql into a Value.
// Supports nil, string, []byte, all integer widths, float32/64, bool and
// time.Time; []byte becomes text, matching how the MySQL driver returns
// string columns, and a BIGINT UNSIGNED beyond the int64 range becomes its
// decimal text so the magnitude survives the round trip. Anything else is
// preserved as a raw value.
func FromDriver(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return NullValue()
	case string:
		return TextValue(x)
	case []byte:
		return TextValue(string(x))
	case int64:
		return IntValue(x)
	case int:
		return IntValue(int64(x))
	case int32:
		return IntValue(int64(x))
	case int16:
		return IntValue(int64(x))
	case int8:
		return IntValue(int64(x))
	case uint:
		// Unsigned values above the int64 range keep their decimal form
		// instead of wrapping negative.
		if uint64(x) > math.MaxInt64 {
			return TextValue(strconv.FormatUint(uint64(x), 10))
		}
		return IntValue(int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return TextValue(strconv.FormatUint(x, 10))
		}
		return IntValue(int64(x))
	case uint32:
		return IntValue(int64(x))
	case uint16:
		return IntValue(int64(x))
	case uint8:
		return IntValue(int64(x))
	case float64:
		return FloatValue(x)
	case float32:
		return FloatValue(float64(x))
	case bool:
		return BoolValue(x)
	case time.Time:
		return TimeValue(x)
	default:
		return RawValue(v)
	}
}

// Kind reports which variant is populated.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the text variant; ok is false for any other kind.
func (v Value) Text() (string, bool) { return v.text, v.kind == KindText }

// Int returns the integer variant; ok is false for any other kind.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns the float variant; ok is false for any other kind.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Bool returns the bool variant; ok is false for any other kind.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Time returns the time variant; ok is false for any other kind.
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == KindTime }

// Driver returns the value in the representation database/sql expects as a
// statement argument.
func (v Value) Driver() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindText:
		return v.text
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	default:
		return v.raw
	}
}

// Equal compares two values by kind and content. Raw values are compared with
// reflect.DeepEqual since they may hold non-comparable driver types.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.text == other.text
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	case KindTime:
		return v.t.Equal(other.t)
	default:
		return reflect.DeepEqual(v.raw, other.raw)
	}
}

// String renders the value for logs and reports.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindText:
		return v.text
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v.raw)
	}
}
