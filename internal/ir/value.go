package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Value is a sealed interface representing a single cell value.
// Only Null, String, Number, and Bool implement it.
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Null represents an absent or JSON null cell value.
type Null struct{}

func (Null) irValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a text cell value. Dates are stored as String.
type String string

func (String) irValue() {}

// Number represents a numeric cell value.
type Number float64

func (Number) irValue() {}

// Bool represents a checkbox cell value.
type Bool bool

func (Bool) irValue() {}

// DateLayout is the normalised calendar date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// FromAny converts a decoded Go value (from JSON, YAML, CUE, or SQLite) into a Value.
//
// Integers and floats become Number, time.Time becomes a DateLayout String.
// Nested arrays and objects are not cell values and return an error.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case []byte:
		return String(string(val)), nil
	case bool:
		return Bool(val), nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(float64(val)), nil
	case int:
		return Number(float64(val)), nil
	case int8:
		return Number(float64(val)), nil
	case int16:
		return Number(float64(val)), nil
	case int32:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case uint:
		return Number(float64(val)), nil
	case uint8:
		return Number(float64(val)), nil
	case uint16:
		return Number(float64(val)), nil
	case uint32:
		return Number(float64(val)), nil
	case uint64:
		return Number(float64(val)), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return Number(f), nil
	case time.Time:
		return String(val.Format(DateLayout)), nil
	default:
		return nil, fmt.Errorf("unsupported cell value type: %T", v)
	}
}

// MustFromAny is FromAny that panics on unsupported types.
// Intended for tests and literals.
func MustFromAny(v any) Value {
	val, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return val
}

// ToAny converts a Value back to a plain Go value (nil, string, float64, bool).
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Number:
		return float64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	switch v.(type) {
	case nil, Null:
		return true
	}
	return false
}

// Equal reports strict equality: same variant and same payload.
// Type-aware comparison (e.g. "5" vs 5) belongs to the column package.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && (av == bv || (math.IsNaN(float64(av)) && math.IsNaN(float64(bv))))
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	}
	return false
}

// Stringify renders a Value the way a browser renders String(value):
// null becomes "", whole numbers have no fraction, booleans are "true"/"false".
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return ""
	case String:
		return string(val)
	case Number:
		return FormatNumber(float64(val))
	case Bool:
		if val {
			return "true"
		}
		return "false"
	}
	return ""
}

// FormatNumber formats a float without exponent for ordinary magnitudes.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if abs := math.Abs(f); abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy mirrors loose truthiness used for checkbox display.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case String:
		return val != ""
	case Number:
		return val != 0 && !math.IsNaN(float64(val))
	case Bool:
		return bool(val)
	}
	return false
}
