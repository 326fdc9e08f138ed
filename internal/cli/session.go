package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/gridstate/internal/compiler"
	"github.com/roach88/gridstate/internal/grid"
	"github.com/roach88/gridstate/internal/ir"
	"github.com/roach88/gridstate/internal/query"
	"github.com/roach88/gridstate/internal/store"
)

// StoreOptions holds the flags shared by commands that work on a database.
type StoreOptions struct {
	*RootOptions
	Database string
}

// gridSession is a grid definition bound to an open store.
type gridSession struct {
	cfg   *compiler.GridConfig
	store *store.Store
	grid  *grid.Grid
}

func (s *gridSession) Close() error {
	return s.store.Close()
}

// loadDefinition compiles gridsDir and picks the named grid. Failures are
// reported through the formatter.
func loadDefinition(f *OutputFormatter, gridsDir, name string) (*compiler.GridConfig, error) {
	result, errs := LoadGrids(gridsDir, LoadModeFailFast)
	if len(errs) > 0 {
		var loadErr *LoadError
		if errors.As(errs[0], &loadErr) {
			return nil, f.Fail(ExitCommandError, loadErr.Code, loadErr.Error())
		}
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, errs[0].Error())
	}
	cfg, ok := result.Grid(name)
	if !ok {
		return nil, f.Fail(ExitCommandError, ErrCodeUnknownGrid, fmt.Sprintf("grid %q not defined in %s", name, gridsDir))
	}
	if verrs := compiler.Validate(cfg); len(verrs) > 0 {
		return nil, f.Fail(ExitFailure, verrs[0].Code, fmt.Sprintf("grid %s: %s", name, verrs[0].Error()))
	}
	return cfg, nil
}

// openStore opens the database keyed by the definition's id property.
func openStore(f *OutputFormatter, path string, cfg *compiler.GridConfig) (*store.Store, error) {
	var opts []store.Option
	if cfg.IDProperty != "" {
		opts = append(opts, store.WithIDProperty(cfg.IDProperty))
	}
	st, err := store.Open(path, opts...)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeDatabase, err.Error())
	}
	return st, nil
}

// openGridSession loads the named grid from the database with params.
func openGridSession(ctx context.Context, f *OutputFormatter, dbPath, gridsDir, name string, params query.Params) (*gridSession, error) {
	cfg, err := loadDefinition(f, gridsDir, name)
	if err != nil {
		return nil, err
	}
	st, err := openStore(f, dbPath, cfg)
	if err != nil {
		return nil, err
	}

	opts := append(cfg.GridOptions(), grid.WithDataSource(st), grid.WithParams(params))
	g := grid.New(cfg.BuildColumns(), opts...)
	if err := g.Load(ctx); err != nil {
		st.Close()
		return nil, f.Fail(ExitCommandError, ErrCodeDatabase, err.Error())
	}
	f.VerboseLog("Loaded %d row(s) of grid %s", g.Len(), name)

	return &gridSession{cfg: cfg, store: st, grid: g}, nil
}

// rowIndexByID finds the row whose id renders as id.
func rowIndexByID(g *grid.Grid, id string) (int, bool) {
	for i := range g.Len() {
		if m, ok := g.Meta(i); ok && m.ID == id {
			return i, true
		}
	}
	return -1, false
}

// parseLiteral reads a flag value as a cell value: numbers, true, false
// and null are typed, everything else is text.
func parseLiteral(s string) ir.Value {
	switch s {
	case "null":
		return ir.Null{}
	case "true":
		return ir.Bool(true)
	case "false":
		return ir.Bool(false)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return ir.Number(f)
	}
	return ir.String(s)
}

// parseParams builds load parameters from --where, --contains and --sort
// flags.
func parseParams(where, contains, sortKeys []string) (query.Params, error) {
	var preds []query.Predicate
	for _, w := range where {
		key, val, ok := strings.Cut(w, "=")
		if !ok || key == "" {
			return query.Params{}, fmt.Errorf("--where %q: expected key=value", w)
		}
		preds = append(preds, query.Equals{Field: key, Value: parseLiteral(val)})
	}
	for _, c := range contains {
		key, text, ok := strings.Cut(c, "=")
		if !ok || key == "" {
			return query.Params{}, fmt.Errorf("--contains %q: expected key=text", c)
		}
		preds = append(preds, query.Contains{Field: key, Text: text})
	}

	params := query.Params{Filter: query.Where(preds...)}
	for _, s := range sortKeys {
		field, desc := strings.CutPrefix(s, "-")
		params.Sort = append(params.Sort, query.SortKey{Field: field, Desc: desc})
	}
	if err := params.Validate(); err != nil {
		return query.Params{}, err
	}
	return params, nil
}
