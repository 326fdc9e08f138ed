package column

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/gridstate/internal/ir"
)

// Descriptor is the declarative column configuration as supplied by a host
// (JSON, YAML, or a CUE grid definition).
//
// Min and Max hold numbers for number columns and date strings for date
// columns. ComboOptions is a raw JSON array payload, kept as a string
// because hosts deliver it from markup attributes.
type Descriptor struct {
	Key          string           `json:"key" yaml:"key" validate:"required,max=128"`
	Label        string           `json:"label,omitempty" yaml:"label,omitempty" validate:"max=256"`
	Editor       string           `json:"editor,omitempty" yaml:"editor,omitempty" validate:"omitempty,oneof=text number date checkbox combo none"`
	ReadOnly     bool             `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Action       bool             `json:"action,omitempty" yaml:"action,omitempty"`
	Required     bool             `json:"required,omitempty" yaml:"required,omitempty"`
	Min          any              `json:"min,omitempty" yaml:"min,omitempty"`
	Max          any              `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength    int              `json:"minLength,omitempty" yaml:"minLength,omitempty" validate:"gte=0"`
	MaxLength    int              `json:"maxLength,omitempty" yaml:"maxLength,omitempty" validate:"gte=0"`
	Pattern      string           `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	ComboOptions string           `json:"comboOptions,omitempty" yaml:"comboOptions,omitempty"`
	ComboConfigs *ComboDescriptor `json:"comboConfigs,omitempty" yaml:"comboConfigs,omitempty"`
}

// ComboDescriptor configures a combo column's option source.
type ComboDescriptor struct {
	DataSource   string `json:"dataSource,omitempty" yaml:"dataSource,omitempty"`
	QueryMode    string `json:"queryMode,omitempty" yaml:"queryMode,omitempty" validate:"omitempty,oneof=local remote"`
	ValueField   string `json:"valueField,omitempty" yaml:"valueField,omitempty"`
	DisplayField string `json:"displayField,omitempty" yaml:"displayField,omitempty"`
	Options      []any  `json:"options,omitempty" yaml:"options,omitempty"`
}

// descriptorValidate checks struct tags on descriptors.
var descriptorValidate *validator.Validate

func init() {
	descriptorValidate = validator.New(validator.WithRequiredStructEnabled())
}

// CheckDescriptor validates the descriptor's struct tags.
// Returns validator.ValidationErrors on failure.
func CheckDescriptor(d Descriptor) error {
	return descriptorValidate.Struct(d)
}

// Build converts descriptors into columns. It never fails: invalid pieces
// are logged and replaced with safe defaults, and duplicate keys after the
// first are dropped.
func Build(descs []Descriptor) []Column {
	cols := make([]Column, 0, len(descs))
	seen := make(map[string]bool, len(descs))
	for _, d := range descs {
		if d.Key == "" {
			slog.Warn("column descriptor without key skipped", "label", d.Label)
			continue
		}
		if seen[d.Key] {
			slog.Warn("duplicate column key skipped", "key", d.Key)
			continue
		}
		seen[d.Key] = true
		cols = append(cols, FromDescriptor(d))
	}
	return cols
}

// FromDescriptor converts a single descriptor. See Build for fallback rules.
func FromDescriptor(d Descriptor) Column {
	if err := CheckDescriptor(d); err != nil {
		slog.Warn("column descriptor has invalid fields", "key", d.Key, "error", err)
	}

	col := Column{
		Key:      d.Key,
		Label:    d.Label,
		ReadOnly: d.ReadOnly,
		Required: d.Required,
		Action:   d.Action,
	}
	if col.Label == "" {
		col.Label = d.Key
	}
	if col.Action {
		return col
	}

	kind, ok := ParseKind(strings.ToLower(strings.TrimSpace(d.Editor)))
	if !ok {
		slog.Warn("unknown editor kind, rendering as plain text", "key", d.Key, "editor", d.Editor)
		return col
	}

	switch kind {
	case KindText:
		col.Editor = buildText(d)
	case KindNumber:
		col.Editor = buildNumber(d)
	case KindDate:
		col.Editor = buildDate(d)
	case KindCheckbox:
		col.Editor = CheckboxEditor{}
	case KindCombo:
		col.Editor = ComboEditor{Combo: buildCombo(d)}
	case KindNone:
	}
	return col
}

func buildText(d Descriptor) TextEditor {
	ed := TextEditor{MinLength: max(d.MinLength, 0), MaxLength: max(d.MaxLength, 0)}
	if d.Pattern != "" {
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			slog.Warn("invalid column pattern ignored", "key", d.Key, "pattern", d.Pattern, "error", err)
		} else {
			ed.Pattern = re
		}
	}
	return ed
}

func buildNumber(d Descriptor) NumberEditor {
	var ed NumberEditor
	if d.Min != nil {
		if f, err := toFloat(d.Min); err == nil {
			ed.Min = &f
		} else {
			slog.Warn("invalid number bound ignored", "key", d.Key, "bound", "min", "error", err)
		}
	}
	if d.Max != nil {
		if f, err := toFloat(d.Max); err == nil {
			ed.Max = &f
		} else {
			slog.Warn("invalid number bound ignored", "key", d.Key, "bound", "max", "error", err)
		}
	}
	return ed
}

func buildDate(d Descriptor) DateEditor {
	var ed DateEditor
	bound := func(name string, v any) string {
		if v == nil {
			return ""
		}
		val, err := ir.FromAny(v)
		if err == nil {
			if s, ok := NormalizeDate(val); ok {
				return s
			}
		}
		slog.Warn("invalid date bound ignored", "key", d.Key, "bound", name, "value", v)
		return ""
	}
	ed.Min = bound("min", d.Min)
	ed.Max = bound("max", d.Max)
	return ed
}

func buildCombo(d Descriptor) ComboConfig {
	cfg := ComboConfig{
		QueryMode:    QueryLocal,
		ValueField:   DefaultValueField,
		DisplayField: DefaultDisplayField,
	}
	var rawOpts []any
	if cd := d.ComboConfigs; cd != nil {
		cfg.DataSource = cd.DataSource
		if cd.QueryMode == string(QueryRemote) {
			cfg.QueryMode = QueryRemote
		}
		if cd.ValueField != "" {
			cfg.ValueField = cd.ValueField
		}
		if cd.DisplayField != "" {
			cfg.DisplayField = cd.DisplayField
		}
		rawOpts = cd.Options
	}

	if d.ComboOptions != "" {
		cfg.Options = ParseOptions(d.ComboOptions, cfg.ValueField, cfg.DisplayField)
	} else {
		cfg.Options = OptionsFromAny(rawOpts, cfg.ValueField, cfg.DisplayField)
	}
	return cfg
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	case json.Number:
		return n.Float64()
	}
	val, err := ir.FromAny(v)
	if err != nil {
		return 0, err
	}
	if num, ok := val.(ir.Number); ok {
		return float64(num), nil
	}
	return 0, fmt.Errorf("not a number: %v", v)
}
