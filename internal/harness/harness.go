package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/roach88/gridstate/internal/column"
	"github.com/roach88/gridstate/internal/grid"
	"github.com/roach88/gridstate/internal/ir"
	"github.com/roach88/gridstate/internal/store"
	"github.com/roach88/gridstate/internal/testutil"
)

// Harness drives one grid through a scenario's steps.
type Harness struct {
	store  *store.Store
	grid   *grid.Grid
	clock  *testutil.DeterministicClock
	ids    *testutil.SequenceGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with a
// deterministic clock and id generator so the result is reproducible.
//
// Execution flow:
//  1. Create a fresh in-memory store and seed the scenario rows
//  2. Build the columns and load a grid from the store
//  3. Execute steps, checking step expectations
//  4. Evaluate assertions against the final state
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	clock := testutil.NewDeterministicClock()

	storeOpts := []store.Option{store.WithNow(clock.Now)}
	if scenario.IDProperty != "" {
		storeOpts = append(storeOpts, store.WithIDProperty(scenario.IDProperty))
	}
	st, err := store.Open(":memory:", storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	rows, err := scenario.SeedRows()
	if err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	if err := st.Seed(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to seed store: %w", err)
	}

	ids := testutil.NewSequenceGenerator("")
	opts := []grid.Option{
		grid.WithDataSource(st),
		grid.WithClock(clock),
		grid.WithIDGenerator(ids),
	}
	if scenario.PageSize > 0 {
		opts = append(opts, grid.WithPageSize(scenario.PageSize))
	}
	if scenario.MaxUndo > 0 {
		opts = append(opts, grid.WithMaxUndo(scenario.MaxUndo))
	}
	g := grid.New(column.Build(scenario.Columns), opts...)
	if err := g.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load grid: %w", err)
	}

	h := &Harness{
		store:  st,
		grid:   g,
		clock:  clock,
		ids:    ids,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	saves, err := st.Saves(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read save records: %w", err)
	}
	result.Changes = g.GetChanges()
	result.Rows = g.Rows()
	result.Saves = len(saves)

	actx := &AssertionContext{Grid: g, Result: result}
	for _, errMsg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSteps runs every step in order. A step whose outcome differs from
// its Expect fails the result but does not stop the run. Only a failure to
// reach the store aborts.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		outcome, err := h.executeStep(ctx, step)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		result.AddOutcome(step.Op, outcome)

		if step.Expect != "" && step.Expect != outcome {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected %q, got %q", i, step.Op, step.Expect, outcome))
		}

		h.logger.Debug("step executed",
			"step", i,
			"op", step.Op,
			"outcome", outcome,
			"seq", h.clock.Current(),
		)
	}
	return nil
}

// executeStep performs one operation and describes what happened.
func (h *Harness) executeStep(ctx context.Context, step Step) (string, error) {
	g := h.grid

	switch step.Op {
	case OpEdit:
		v, err := ir.FromAny(step.Value)
		if err != nil {
			return "", err
		}
		res, _ := g.Edit(step.Row, step.Column, v)
		return res.String(), nil

	case OpAdd:
		initial, err := rowFromNode(&step.Values)
		if err != nil {
			return "", err
		}
		i, ok := g.AddRow(initial)
		if !ok {
			return "refused", nil
		}
		return strconv.Itoa(i), nil

	case OpDelete:
		return okOrRefused(g.DeleteRow(step.Row)), nil

	case OpDeleteSelected:
		return strconv.Itoa(g.DeleteSelected()), nil

	case OpUndo:
		return okOrRefused(g.Undo()), nil

	case OpRedo:
		return okOrRefused(g.Redo()), nil

	case OpSelect:
		return okOrRefused(g.Select(step.Row, true)), nil

	case OpDeselect:
		return okOrRefused(g.Select(step.Row, false)), nil

	case OpSelectAll:
		g.SelectAll()
		return "ok", nil

	case OpDeselectAll:
		g.DeselectAll()
		return "ok", nil

	case OpPage:
		return okOrRefused(g.GoToPage(step.Page)), nil

	case OpPageSize:
		return okOrRefused(g.SetPageSize(step.Size)), nil

	case OpReload:
		if err := g.Load(ctx); err != nil {
			return "", err
		}
		return "ok", nil

	case OpSave:
		err := g.Save(ctx)
		var ge *grid.GridError
		switch {
		case err == nil:
			return "ok", nil
		case errors.As(err, &ge):
			return string(ge.Code), nil
		default:
			return "error: " + err.Error(), nil
		}
	}
	return "", fmt.Errorf("unknown op %q", step.Op)
}

func okOrRefused(ok bool) string {
	if ok {
		return "ok"
	}
	return "refused"
}
