package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/gridstate/internal/column"
	"github.com/roach88/gridstate/internal/grid"
)

// GridConfig is a compiled grid definition.
type GridConfig struct {
	Name       string              `json:"name"`
	IDProperty string              `json:"idProperty,omitempty"`
	PageSize   int                 `json:"pageSize,omitempty"`
	MaxUndo    int                 `json:"maxUndo,omitempty"`
	Columns    []column.Descriptor `json:"columns"`
}

// BuildColumns converts the descriptors with column.Build.
func (c *GridConfig) BuildColumns() []column.Column {
	return column.Build(c.Columns)
}

// GridOptions returns the grid options the definition configures. Zero
// values are left to the grid defaults.
func (c *GridConfig) GridOptions() []grid.Option {
	var opts []grid.Option
	if c.IDProperty != "" {
		opts = append(opts, grid.WithIDProperty(c.IDProperty))
	}
	if c.PageSize > 0 {
		opts = append(opts, grid.WithPageSize(c.PageSize))
	}
	if c.MaxUndo > 0 {
		opts = append(opts, grid.WithMaxUndo(c.MaxUndo))
	}
	return opts
}

// CompileGrid parses a CUE value into a GridConfig.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the grid struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`grid: orders: { columns: [...] }`)
//	cfg, err := CompileGrid(v.LookupPath(cue.ParsePath("grid.orders")))
func CompileGrid(v cue.Value) (*GridConfig, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &GridConfig{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		cfg.Name = labels[len(labels)-1].String()
	}

	var err error
	if cfg.IDProperty, err = optionalString(v, "idProperty"); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = optionalInt(v, "pageSize"); err != nil {
		return nil, err
	}
	if cfg.MaxUndo, err = optionalInt(v, "maxUndo"); err != nil {
		return nil, err
	}

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, &CompileError{
			Field:   "columns",
			Message: "columns is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := colsVal.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "columns",
			Message: "columns must be a list",
			Pos:     colsVal.Pos(),
		}
	}
	for i := 0; iter.Next(); i++ {
		desc, err := decodeColumn(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		cfg.Columns = append(cfg.Columns, desc)
	}

	return cfg, nil
}

// decodeColumn goes through JSON so that numbers arrive as json.Number and
// unknown fields are rejected with the column's position.
func decodeColumn(v cue.Value, i int) (column.Descriptor, error) {
	var desc column.Descriptor
	if err := v.Err(); err != nil {
		return desc, formatCUEError(err)
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return desc, formatCUEError(err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&desc); err != nil {
		return desc, &CompileError{
			Field:   fmt.Sprintf("columns[%d]", i),
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}
	return desc, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: "must be a string", Pos: fv.Pos()}
	}
	return s, nil
}

func optionalInt(v cue.Value, field string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, &CompileError{Field: field, Message: "must be an integer", Pos: fv.Pos()}
	}
	return int(n), nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
