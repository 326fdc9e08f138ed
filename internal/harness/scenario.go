package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gridstate/internal/column"
	"github.com/roach88/gridstate/internal/ir"
)

// Scenario is a scripted grid session: columns and seed rows, a sequence
// of user operations, and assertions on the resulting state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// IDProperty names the row key holding the primary key. Defaults to "id".
	IDProperty string `yaml:"id_property,omitempty"`

	// PageSize overrides the grid's default page size.
	PageSize int `yaml:"page_size,omitempty"`

	// MaxUndo overrides the undo stack capacity.
	MaxUndo int `yaml:"max_undo,omitempty"`

	// Columns are the column descriptors, as a host would supply them.
	Columns []column.Descriptor `yaml:"columns"`

	// Rows are seeded into a fresh store before the grid loads. Kept as
	// nodes so key order survives decoding.
	Rows []yaml.Node `yaml:"rows,omitempty"`

	// Steps run in order against the loaded grid.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one user operation.
type Step struct {
	// Op is the operation: edit, add, delete, delete_selected, undo, redo,
	// select, deselect, select_all, deselect_all, page, page_size, reload
	// or save.
	Op string `yaml:"op"`

	// Row is the absolute row index (edit, delete, select, deselect).
	Row int `yaml:"row,omitempty"`

	// Column is the column key (edit).
	Column string `yaml:"column,omitempty"`

	// Value is the value to commit (edit). Null clears the cell.
	Value any `yaml:"value,omitempty"`

	// Values are the initial values of an added row (add).
	Values yaml.Node `yaml:"values,omitempty"`

	// Page is the target page (page).
	Page int `yaml:"page,omitempty"`

	// Size is the new page size (page_size).
	Size int `yaml:"size,omitempty"`

	// Expect, when set, must equal the step's outcome.
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates the grid after all steps ran.
type Assertion struct {
	// Type specifies the assertion type:
	// - "has_changes": pending work exists (Expect bool)
	// - "changes": counts per change list (Expect map of added/modified/deleted)
	// - "cell": a cell value (Row, Column, Expect)
	// - "display": a cell's display text (Row, Column, Expect string)
	// - "header_state": select-all state (Expect unchecked, indeterminate or checked)
	// - "can_undo", "can_redo": history state (Expect bool)
	// - "row_count": rows including those marked for deletion (Expect int)
	// - "selected": selected row indices (Expect list)
	// - "page": current page (Expect int)
	// - "saves": audit records written by the store (Expect int)
	Type string `yaml:"type"`

	Row    int    `yaml:"row,omitempty"`
	Column string `yaml:"column,omitempty"`

	// Expect is the expected value. A cell assertion with a null Expect
	// expects a null cell.
	Expect any `yaml:"expect"`
}

// Step operations.
const (
	OpEdit           = "edit"
	OpAdd            = "add"
	OpDelete         = "delete"
	OpDeleteSelected = "delete_selected"
	OpUndo           = "undo"
	OpRedo           = "redo"
	OpSelect         = "select"
	OpDeselect       = "deselect"
	OpSelectAll      = "select_all"
	OpDeselectAll    = "deselect_all"
	OpPage           = "page"
	OpPageSize       = "page_size"
	OpReload         = "reload"
	OpSave           = "save"
)

// Assertion type constants.
const (
	AssertHasChanges  = "has_changes"
	AssertChanges     = "changes"
	AssertCell        = "cell"
	AssertDisplay     = "display"
	AssertHeaderState = "header_state"
	AssertCanUndo     = "can_undo"
	AssertCanRedo     = "can_redo"
	AssertRowCount    = "row_count"
	AssertSelected    = "selected"
	AssertPage        = "page"
	AssertSaves       = "saves"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// SeedRows decodes the scenario's rows.
func (s *Scenario) SeedRows() ([]*ir.Row, error) {
	rows := make([]*ir.Row, 0, len(s.Rows))
	for i := range s.Rows {
		r, err := rowFromNode(&s.Rows[i])
		if err != nil {
			return nil, fmt.Errorf("rows[%d]: %w", i, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// rowFromNode converts a YAML mapping into a row, keeping key order. A
// missing node is an empty row.
func rowFromNode(n *yaml.Node) (*ir.Row, error) {
	row := ir.NewRow()
	if n.Kind == 0 {
		return row, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: row must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		var raw any
		if err := n.Content[i+1].Decode(&raw); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", n.Content[i].Line, key, err)
		}
		v, err := ir.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", n.Content[i].Line, key, err)
		}
		row.Set(key, v)
	}
	return row, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Columns) == 0 {
		return fmt.Errorf("columns list is required and must be non-empty")
	}

	if s.PageSize < 0 {
		return fmt.Errorf("page_size must be non-negative")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Rows {
		if _, err := rowFromNode(&s.Rows[i]); err != nil {
			return fmt.Errorf("rows[%d]: %w", i, err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpEdit:
		if st.Column == "" {
			return fmt.Errorf("steps[%d]: column is required for edit", index)
		}
	case OpAdd:
		if _, err := rowFromNode(&st.Values); err != nil {
			return fmt.Errorf("steps[%d].values: %w", index, err)
		}
	case OpPageSize:
		if st.Size <= 0 {
			return fmt.Errorf("steps[%d]: size must be positive for page_size", index)
		}
	case OpDelete, OpDeleteSelected, OpUndo, OpRedo, OpSelect, OpDeselect,
		OpSelectAll, OpDeselectAll, OpPage, OpReload, OpSave:
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	if st.Row < 0 {
		return fmt.Errorf("steps[%d]: row must be non-negative", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCell:
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for cell", index)
		}
	case AssertDisplay:
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for display", index)
		}
		if _, ok := a.Expect.(string); !ok {
			return fmt.Errorf("assertions[%d]: expect must be a string for display", index)
		}
	case AssertHasChanges, AssertCanUndo, AssertCanRedo:
		if _, ok := a.Expect.(bool); !ok {
			return fmt.Errorf("assertions[%d]: expect must be a boolean for %s", index, a.Type)
		}
	case AssertRowCount, AssertPage, AssertSaves:
		if n, ok := a.Expect.(int); !ok || n < 0 {
			return fmt.Errorf("assertions[%d]: expect must be a non-negative integer for %s", index, a.Type)
		}
	case AssertHeaderState:
		if _, ok := a.Expect.(string); !ok {
			return fmt.Errorf("assertions[%d]: expect must be a string for header_state", index)
		}
	case AssertSelected:
		if _, ok := a.Expect.([]any); !ok {
			return fmt.Errorf("assertions[%d]: expect must be a list for selected", index)
		}
	case AssertChanges:
		m, ok := a.Expect.(map[string]any)
		if !ok || len(m) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for changes", index)
		}
		for k, v := range m {
			switch k {
			case "added", "modified", "deleted":
			default:
				return fmt.Errorf("assertions[%d]: unknown change list %q", index, k)
			}
			if _, ok := v.(int); !ok {
				return fmt.Errorf("assertions[%d]: %s must be an integer", index, k)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
