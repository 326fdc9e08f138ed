package column

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/roach88/gridstate/internal/ir"
)

// ParseOptions decodes a JSON array of options. Elements may be scalars or
// objects carrying valueField/displayField. Malformed JSON never fails: it
// degrades to an empty list and logs a warning.
func ParseOptions(raw, valueField, displayField string) []Option {
	if raw == "" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var items []any
	if err := dec.Decode(&items); err != nil {
		slog.Warn("invalid combo options JSON", "payload", raw, "error", err)
		return []Option{}
	}
	return OptionsFromAny(items, valueField, displayField)
}

// OptionsFromAny converts decoded option elements. Elements that cannot be
// represented are skipped with a warning.
func OptionsFromAny(items []any, valueField, displayField string) []Option {
	if items == nil {
		return nil
	}
	if valueField == "" {
		valueField = DefaultValueField
	}
	if displayField == "" {
		displayField = DefaultDisplayField
	}

	opts := make([]Option, 0, len(items))
	for i, item := range items {
		opt, ok := optionFromAny(item, valueField, displayField)
		if !ok {
			slog.Warn("combo option skipped", "index", i, "option", item)
			continue
		}
		opts = append(opts, opt)
	}
	return opts
}

func optionFromAny(item any, valueField, displayField string) (Option, bool) {
	if m, ok := item.(map[string]any); ok {
		fields, err := ir.RowFromMap(m)
		if err != nil {
			return Option{}, false
		}
		opt := Option{Value: fields.Get(valueField), Fields: fields}
		opt.Display = ir.Stringify(fields.Get(displayField))
		if opt.Display == "" {
			opt.Display = ir.Stringify(opt.Value)
		}
		return opt, true
	}

	v, err := ir.FromAny(item)
	if err != nil {
		return Option{}, false
	}
	return Option{Value: v, Display: ir.Stringify(v)}, true
}
