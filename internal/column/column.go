package column

import (
	"regexp"

	"github.com/roach88/gridstate/internal/ir"
)

// Kind identifies an editor variant.
type Kind int

const (
	KindNone Kind = iota
	KindText
	KindNumber
	KindDate
	KindCheckbox
	KindCombo
)

var kindNames = map[Kind]string{
	KindNone:     "none",
	KindText:     "text",
	KindNumber:   "number",
	KindDate:     "date",
	KindCheckbox: "checkbox",
	KindCombo:    "combo",
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a configuration name to a Kind. The empty string is KindNone.
func ParseKind(s string) (Kind, bool) {
	if s == "" {
		return KindNone, true
	}
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindNone, false
}

// Editor is the sealed set of editor variants.
type Editor interface {
	Kind() Kind
	editor() // Sealed
}

// TextEditor constrains free text. Zero lengths mean unbounded.
type TextEditor struct {
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
}

func (TextEditor) Kind() Kind { return KindText }
func (TextEditor) editor()    {}

// NumberEditor constrains numeric input. Nil bounds mean unbounded.
type NumberEditor struct {
	Min *float64
	Max *float64
}

func (NumberEditor) Kind() Kind { return KindNumber }
func (NumberEditor) editor()    {}

// DateEditor constrains calendar dates. Bounds are normalised YYYY-MM-DD
// strings; empty means unbounded.
type DateEditor struct {
	Min string
	Max string
}

func (DateEditor) Kind() Kind { return KindDate }
func (DateEditor) editor()    {}

// CheckboxEditor accepts booleans only.
type CheckboxEditor struct{}

func (CheckboxEditor) Kind() Kind { return KindCheckbox }
func (CheckboxEditor) editor()    {}

// ComboEditor picks a value from a local or remote option list.
type ComboEditor struct {
	Combo ComboConfig
}

func (ComboEditor) Kind() Kind { return KindCombo }
func (ComboEditor) editor()    {}

// QueryMode says where combo options come from.
type QueryMode string

const (
	QueryLocal  QueryMode = "local"
	QueryRemote QueryMode = "remote"
)

// Default combo field names.
const (
	DefaultValueField   = "value"
	DefaultDisplayField = "label"
)

// ComboConfig describes a combo's option source.
type ComboConfig struct {
	DataSource   string
	QueryMode    QueryMode
	ValueField   string
	DisplayField string
	Options      []Option
}

// Closed reports whether the option list is a local, non-empty list that
// values must belong to.
func (c ComboConfig) Closed() bool {
	return c.QueryMode != QueryRemote && len(c.Options) > 0
}

// Lookup finds the option whose value matches v under text equality.
func (c ComboConfig) Lookup(v ir.Value) (Option, bool) {
	want := normalizeText(v)
	for _, opt := range c.Options {
		if normalizeText(opt.Value) == want {
			return opt, true
		}
	}
	return Option{}, false
}

// Option is one selectable combo entry.
type Option struct {
	Value   ir.Value
	Display string
	// Fields holds the full option object when the option was an object.
	Fields *ir.Row
}

// Column is a grid column definition.
type Column struct {
	Key      string
	Label    string
	Editor   Editor // nil means the column has no editor
	ReadOnly bool
	Required bool
	Action   bool // action columns render buttons and hold no data
}

// Kind returns the editor kind, KindNone when there is no editor.
func (c Column) Kind() Kind {
	if c.Editor == nil {
		return KindNone
	}
	return c.Editor.Kind()
}

// Editable reports whether cells in this column can enter edit mode.
func (c Column) Editable() bool {
	return c.Editor != nil && !c.ReadOnly && !c.Action
}

// Combo returns the combo config with defaults applied, for any column.
func (c Column) Combo() ComboConfig {
	cfg := ComboConfig{QueryMode: QueryLocal}
	if ed, ok := c.Editor.(ComboEditor); ok {
		cfg = ed.Combo
	}
	if cfg.ValueField == "" {
		cfg.ValueField = DefaultValueField
	}
	if cfg.DisplayField == "" {
		cfg.DisplayField = DefaultDisplayField
	}
	if cfg.QueryMode == "" {
		cfg.QueryMode = QueryLocal
	}
	return cfg
}

// DefaultValue returns the initial value for a freshly added row.
func DefaultValue(c Column) ir.Value {
	switch c.Editor.(type) {
	case CheckboxEditor:
		return ir.Bool(false)
	case NumberEditor:
		return ir.Number(0)
	case DateEditor:
		return ir.Null{}
	default:
		return ir.String("")
	}
}

// Index maps column keys to their position.
func Index(cols []Column) map[string]int {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c.Key] = i
	}
	return idx
}

// EditableKeys returns the keys of editable columns in order.
func EditableKeys(cols []Column) []string {
	var keys []string
	for _, c := range cols {
		if c.Editable() {
			keys = append(keys, c.Key)
		}
	}
	return keys
}
