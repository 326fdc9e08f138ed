package compiler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/gridstate/internal/column"
	"github.com/roach88/gridstate/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// Grid-level errors (E100-E109)
	ErrNoColumns      = "E100" // at least one column required
	ErrDuplicateKey   = "E101" // duplicate column key
	ErrUnknownEditor  = "E102" // editor is not a known kind
	ErrInvalidPattern = "E103" // pattern does not compile
	ErrInvalidBounds  = "E104" // min/max or length bounds unusable
	ErrInvalidField   = "E105" // descriptor field fails its constraint
	ErrComboNoSource  = "E106" // combo has neither options nor data source
	ErrInvalidSetting = "E107" // negative page size or undo depth
	ErrInvalidOptions = "E108" // comboOptions is not a JSON array
)

// ValidationError represents a grid definition error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled grid definition.
// Returns all errors found (does not fail-fast).
func Validate(cfg *GridConfig) []ValidationError {
	var errs []ValidationError

	if cfg.PageSize < 0 {
		errs = append(errs, ValidationError{
			Field:   "pageSize",
			Message: fmt.Sprintf("page size must not be negative, got %d", cfg.PageSize),
			Code:    ErrInvalidSetting,
		})
	}
	if cfg.MaxUndo < 0 {
		errs = append(errs, ValidationError{
			Field:   "maxUndo",
			Message: fmt.Sprintf("undo depth must not be negative, got %d", cfg.MaxUndo),
			Code:    ErrInvalidSetting,
		})
	}

	// E100: at least one column
	if len(cfg.Columns) == 0 {
		errs = append(errs, ValidationError{
			Field:   "columns",
			Message: "at least one column is required",
			Code:    ErrNoColumns,
		})
	}

	keys := make(map[string]bool)
	for i, d := range cfg.Columns {
		field := fmt.Sprintf("columns[%d]", i)

		// E101: duplicate key
		if d.Key != "" && keys[d.Key] {
			errs = append(errs, ValidationError{
				Field:   field + ".key",
				Message: fmt.Sprintf("duplicate column key: %q", d.Key),
				Code:    ErrDuplicateKey,
			})
		}
		keys[d.Key] = true

		errs = append(errs, validateDescriptor(d, field)...)
	}

	return errs
}

func validateDescriptor(d column.Descriptor, field string) []ValidationError {
	var errs []ValidationError

	// E105: struct tag constraints
	errs = append(errs, tagErrors(d, field)...)

	kind, ok := column.ParseKind(strings.ToLower(strings.TrimSpace(d.Editor)))
	if !ok {
		// E102: unknown editor
		errs = append(errs, ValidationError{
			Field:   field + ".editor",
			Message: fmt.Sprintf("unknown editor %q, must be one of text, number, date, checkbox, combo", d.Editor),
			Code:    ErrUnknownEditor,
		})
		return errs
	}
	if d.Action {
		return errs
	}

	switch kind {
	case column.KindText:
		// E103: pattern must compile
		if d.Pattern != "" {
			if _, err := regexp.Compile(d.Pattern); err != nil {
				errs = append(errs, ValidationError{
					Field:   field + ".pattern",
					Message: fmt.Sprintf("invalid pattern %q: %v", d.Pattern, err),
					Code:    ErrInvalidPattern,
				})
			}
		}
		if d.MinLength > 0 && d.MaxLength > 0 && d.MinLength > d.MaxLength {
			errs = append(errs, ValidationError{
				Field:   field + ".minLength",
				Message: fmt.Sprintf("minLength %d exceeds maxLength %d", d.MinLength, d.MaxLength),
				Code:    ErrInvalidBounds,
			})
		}

	case column.KindNumber:
		errs = append(errs, boundErrors(d, field, numberBound)...)

	case column.KindDate:
		errs = append(errs, boundErrors(d, field, dateBound)...)

	case column.KindCombo:
		errs = append(errs, comboErrors(d, field)...)
	}

	return errs
}

// tagErrors converts validator failures into E105 errors.
func tagErrors(d column.Descriptor, field string) []ValidationError {
	err := column.CheckDescriptor(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Field: field, Message: err.Error(), Code: ErrInvalidField}}
	}
	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		if fe.StructField() == "Editor" {
			continue // reported as E102
		}
		msg := fmt.Sprintf("failed %q constraint", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed %q constraint (%s)", fe.Tag(), fe.Param())
		}
		out = append(out, ValidationError{
			Field:   field + "." + jsonName(fe.StructNamespace()),
			Message: msg,
			Code:    ErrInvalidField,
		})
	}
	return out
}

// jsonName maps "Descriptor.ComboConfigs.QueryMode" to
// "comboConfigs.queryMode".
func jsonName(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

type boundParser func(v any) (string, float64, bool)

func numberBound(v any) (string, float64, bool) {
	val, err := ir.FromAny(v)
	if err != nil {
		return "", 0, false
	}
	f, ok := column.ParseNumber(val)
	return "", f, ok
}

func dateBound(v any) (string, float64, bool) {
	val, err := ir.FromAny(v)
	if err != nil {
		return "", 0, false
	}
	s, ok := column.NormalizeDate(val)
	return s, 0, ok
}

func boundErrors(d column.Descriptor, field string, parse boundParser) []ValidationError {
	var errs []ValidationError
	type bound struct {
		s  string
		f  float64
		ok bool
	}
	read := func(name string, v any) bound {
		if v == nil {
			return bound{}
		}
		s, f, ok := parse(v)
		if !ok {
			errs = append(errs, ValidationError{
				Field:   field + "." + name,
				Message: fmt.Sprintf("invalid %s bound %v", d.Editor, v),
				Code:    ErrInvalidBounds,
			})
		}
		return bound{s, f, ok}
	}
	lo, hi := read("min", d.Min), read("max", d.Max)
	if lo.ok && hi.ok && (lo.f > hi.f || lo.s > hi.s) {
		errs = append(errs, ValidationError{
			Field:   field + ".min",
			Message: fmt.Sprintf("min %v exceeds max %v", d.Min, d.Max),
			Code:    ErrInvalidBounds,
		})
	}
	return errs
}

func comboErrors(d column.Descriptor, field string) []ValidationError {
	var errs []ValidationError
	hasOptions := d.ComboOptions != ""

	if d.ComboOptions != "" {
		var items []any
		dec := json.NewDecoder(bytes.NewReader([]byte(d.ComboOptions)))
		if err := dec.Decode(&items); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".comboOptions",
				Message: fmt.Sprintf("comboOptions must be a JSON array: %v", err),
				Code:    ErrInvalidOptions,
			})
		}
	}

	remote := false
	if cc := d.ComboConfigs; cc != nil {
		hasOptions = hasOptions || len(cc.Options) > 0
		remote = cc.QueryMode == string(column.QueryRemote)
		if remote && cc.DataSource == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".comboConfigs.dataSource",
				Message: "remote query mode requires a data source",
				Code:    ErrComboNoSource,
			})
			return errs
		}
		if cc.DataSource != "" {
			return errs
		}
	}

	// E106: a local combo needs something to pick from
	if !hasOptions && !remote {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "combo column needs comboOptions, comboConfigs.options or comboConfigs.dataSource",
			Code:    ErrComboNoSource,
		})
	}
	return errs
}
