package column

import (
	"fmt"
	"unicode/utf8"

	"github.com/roach88/gridstate/internal/ir"
)

// ValidationError reports why a value cannot be committed to a column.
type ValidationError struct {
	Column  string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Column, e.Message)
}

func invalid(c Column, format string, args ...any) *ValidationError {
	return &ValidationError{Column: c.Key, Message: fmt.Sprintf(format, args...)}
}

// Validate checks v against the column's required flag and editor
// constraints. Returns nil or a *ValidationError.
//
// Empty values (null or "") skip kind-specific checks; only the required
// flag rejects them. Checkbox values must always be booleans.
func Validate(c Column, v ir.Value) error {
	empty := IsEmpty(v)
	if c.Required && empty {
		return invalid(c, "%s is required", c.Label)
	}

	switch ed := c.Editor.(type) {
	case NumberEditor:
		if empty {
			return nil
		}
		f, ok := ParseNumber(v)
		if !ok {
			return invalid(c, "Please enter a valid number")
		}
		if ed.Min != nil && f < *ed.Min {
			return invalid(c, "Value must be at least %s", ir.FormatNumber(*ed.Min))
		}
		if ed.Max != nil && f > *ed.Max {
			return invalid(c, "Value must not exceed %s", ir.FormatNumber(*ed.Max))
		}

	case DateEditor:
		if empty {
			return nil
		}
		d, ok := NormalizeDate(v)
		if !ok {
			return invalid(c, "Please enter a valid date")
		}
		if ed.Min != "" && d < ed.Min {
			return invalid(c, "Date must be after %s", ed.Min)
		}
		if ed.Max != "" && d > ed.Max {
			return invalid(c, "Date must be before %s", ed.Max)
		}

	case TextEditor:
		if empty {
			return nil
		}
		s := ir.Stringify(v)
		n := utf8.RuneCountInString(s)
		if ed.MinLength > 0 && n < ed.MinLength {
			return invalid(c, "Minimum length is %d characters", ed.MinLength)
		}
		if ed.MaxLength > 0 && n > ed.MaxLength {
			return invalid(c, "Maximum length is %d characters", ed.MaxLength)
		}
		if ed.Pattern != nil && !ed.Pattern.MatchString(s) {
			return invalid(c, "Invalid format")
		}

	case CheckboxEditor:
		if _, ok := v.(ir.Bool); !ok {
			return invalid(c, "Invalid checkbox value")
		}

	case ComboEditor:
		if empty || !ed.Combo.Closed() {
			return nil
		}
		if _, ok := ed.Combo.Lookup(v); !ok {
			return invalid(c, "Please select a valid option")
		}

	case nil:
	}
	return nil
}
