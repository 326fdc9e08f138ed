package column

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/gridstate/internal/ir"
)

// dateLayouts are tried in order when parsing date input.
var dateLayouts = []string{
	ir.DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
}

// floatPrefix matches the longest numeric prefix, like a browser's parseFloat.
var floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// Equal is the type-aware equality used to decide whether a commit is a
// real change:
//   - date: both sides normalised to YYYY-MM-DD, unparsable as ""
//   - number: both sides parsed like parseFloat, NaN as ""
//   - others: null and "" are the same empty marker, then text comparison
func Equal(c Column, a, b ir.Value) bool {
	switch c.Editor.(type) {
	case DateEditor:
		da, _ := NormalizeDate(a)
		db, _ := NormalizeDate(b)
		return da == db
	case NumberEditor:
		return NormalizeNumber(a) == NormalizeNumber(b)
	default:
		return normalizeText(a) == normalizeText(b)
	}
}

// IsEmpty reports whether v is null or the empty string.
func IsEmpty(v ir.Value) bool {
	return normalizeText(v) == ""
}

// normalizeText maps null and "" to the same marker and NFC-normalises text.
func normalizeText(v ir.Value) string {
	return norm.NFC.String(ir.Stringify(v))
}

// NormalizeNumber renders v as parseFloat would see it, "" when not a number.
func NormalizeNumber(v ir.Value) string {
	switch val := v.(type) {
	case ir.Number:
		if math.IsNaN(float64(val)) {
			return ""
		}
		return ir.FormatNumber(float64(val))
	case ir.String:
		f, ok := parseFloatPrefix(string(val))
		if !ok {
			return ""
		}
		return ir.FormatNumber(f)
	}
	return ""
}

func parseFloatPrefix(s string) (float64, bool) {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	switch m {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseNumber parses v strictly: the whole text must be a finite number.
func ParseNumber(v ir.Value) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case ir.Number:
		f = float64(val)
	case ir.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseDate parses a date value. Numbers are Unix milliseconds.
func ParseDate(v ir.Value) (time.Time, bool) {
	switch val := v.(type) {
	case ir.String:
		s := strings.TrimSpace(string(val))
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	case ir.Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(f)).UTC(), true
	}
	return time.Time{}, false
}

// NormalizeDate renders a parsable date as YYYY-MM-DD in its own offset.
func NormalizeDate(v ir.Value) (string, bool) {
	t, ok := ParseDate(v)
	if !ok {
		return "", false
	}
	return t.Format(ir.DateLayout), true
}

// Normalize converts validated editor input to the stored representation:
// numeric text becomes Number, dates become YYYY-MM-DD, empty number and
// date input becomes Null, and combo input adopts the matching option's
// value so the stored type matches the option list.
func Normalize(c Column, v ir.Value) ir.Value {
	switch ed := c.Editor.(type) {
	case NumberEditor:
		if IsEmpty(v) {
			return ir.Null{}
		}
		if f, ok := ParseNumber(v); ok {
			return ir.Number(f)
		}
	case DateEditor:
		if IsEmpty(v) {
			return ir.Null{}
		}
		if d, ok := NormalizeDate(v); ok {
			return ir.String(d)
		}
	case ComboEditor:
		if opt, ok := ed.Combo.Lookup(v); ok && !IsEmpty(v) {
			return opt.Value
		}
	case TextEditor, CheckboxEditor, nil:
	}
	if v == nil {
		return ir.Null{}
	}
	return v
}
