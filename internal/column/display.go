package column

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/gridstate/internal/ir"
)

// FindDisplayFieldKey searches a row for the human-readable companion of a
// value-holding key. Candidates in order:
//  1. the display field itself
//  2. valueKey + "Name"            (assignedTo -> assignedToName)
//  3. valueKey without "Id" + "Name" (statusId -> statusName)
//  4. valueKey + Capitalized(displayField)
//  5. any other key containing both valueKey and displayField, case-insensitively
func FindDisplayFieldKey(valueKey, displayField string, row *ir.Row) (string, bool) {
	if row == nil {
		return "", false
	}
	if displayField != "" && row.Has(displayField) {
		return displayField, true
	}
	if k := valueKey + "Name"; row.Has(k) {
		return k, true
	}
	if base, ok := strings.CutSuffix(valueKey, "Id"); ok {
		if k := base + "Name"; row.Has(k) {
			return k, true
		}
	}
	if k := valueKey + capitalize(displayField); row.Has(k) {
		return k, true
	}

	lowerValue := strings.ToLower(valueKey)
	lowerDisplay := strings.ToLower(displayField)
	for _, k := range row.Keys() {
		if k == valueKey {
			continue
		}
		lk := strings.ToLower(k)
		if strings.Contains(lk, lowerValue) && strings.Contains(lk, lowerDisplay) {
			return k, true
		}
	}
	return "", false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ResolveDisplay returns the text shown for a combo value: a non-empty
// companion field from the row, else the matching option's display text,
// else the raw value.
func ResolveDisplay(c Column, row *ir.Row, value ir.Value) string {
	cfg := c.Combo()
	if key, ok := FindDisplayFieldKey(c.Key, cfg.DisplayField, row); ok {
		if companion := row.Get(key); ir.Truthy(companion) {
			return ir.Stringify(companion)
		}
	}
	if opt, ok := cfg.Lookup(value); ok {
		return opt.Display
	}
	return ir.Stringify(value)
}

// FormatValue renders a stored value for display.
func FormatValue(c Column, row *ir.Row, value ir.Value) string {
	if ir.IsNull(value) {
		return ""
	}
	switch c.Editor.(type) {
	case CheckboxEditor:
		if ir.Truthy(value) {
			return "✓"
		}
		return ""
	case DateEditor:
		if d, ok := NormalizeDate(value); ok {
			return d
		}
	case ComboEditor:
		return ResolveDisplay(c, row, value)
	case TextEditor, NumberEditor, nil:
	}
	return ir.Stringify(value)
}
