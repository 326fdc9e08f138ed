package grid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/gridstate/internal/column"
	"github.com/roach88/gridstate/internal/ir"
	"github.com/roach88/gridstate/internal/query"
)

func ptr(f float64) *float64 { return &f }

// testColumns is the column set used across grid tests:
// id (read-only), name (required text), qty (number >= 0), done
// (checkbox), an action column.
func testColumns() []column.Column {
	return []column.Column{
		{Key: "id", Label: "ID", ReadOnly: true},
		{Key: "name", Label: "Name", Editor: column.TextEditor{MaxLength: 20}, Required: true},
		{Key: "qty", Label: "Qty", Editor: column.NumberEditor{Min: ptr(0)}},
		{Key: "done", Label: "Done", Editor: column.CheckboxEditor{}},
		{Key: "actions", Label: "", Action: true},
	}
}

func testRows(n int) []*ir.Row {
	rows := make([]*ir.Row, n)
	for i := range rows {
		rows[i] = ir.NewRow(
			ir.P("id", i+1),
			ir.P("name", string(rune('A'+i))),
			ir.P("qty", i),
			ir.P("done", false),
		)
	}
	return rows
}

// fakeSource is an in-memory DataSource.
type fakeSource struct {
	rows    []*ir.Row
	saveErr error
	saved   []Changes
	loads   int
	onSave  func()
	// nextID, when positive, is assigned to added rows without an id
	nextID int
}

func (f *fakeSource) Load(_ context.Context, params query.Params) ([]*ir.Row, error) {
	f.loads++
	return query.Apply(params, ir.CloneRows(f.rows)), nil
}

func (f *fakeSource) Save(_ context.Context, changes Changes) error {
	if f.onSave != nil {
		f.onSave()
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	for _, r := range changes.Added {
		if v, ok := r.Lookup("id"); f.nextID > 0 && (!ok || column.IsEmpty(v)) {
			r.Set("id", ir.Number(f.nextID))
			f.nextID++
		}
	}
	f.saved = append(f.saved, changes)
	return nil
}

func (f *fakeSource) TotalCount() int    { return len(f.rows) }
func (f *fakeSource) IDProperty() string { return "id" }

var errBackend = errors.New("backend unavailable")

// recordRenderer keeps the last rendered page.
type recordRenderer struct {
	calls int
	last  []*ir.Row
}

func (r *recordRenderer) Render(page []*ir.Row) {
	r.calls++
	r.last = page
}

// newTestGrid returns a grid bound to n test rows with deterministic ids.
func newTestGrid(t *testing.T, n int, opts ...Option) *Grid {
	t.Helper()
	base := []Option{
		WithIDGenerator(NewFixedGenerator("temp_1", "temp_2", "temp_3", "temp_4", "temp_5")),
		WithClock(NewClock()),
	}
	g := New(testColumns(), append(base, opts...)...)
	g.Bind(testRows(n))
	require.Equal(t, n, g.Len())
	return g
}

// state captures the observable store state as canonical JSON, ignoring
// timestamps and sequence numbers.
func state(t *testing.T, g *Grid) string {
	t.Helper()
	g.mu.Lock()
	snap := g.store.Snapshot()
	g.mu.Unlock()

	meta := make([]any, len(snap.Meta))
	for i, m := range snap.Meta {
		meta[i] = map[string]any{
			"id":       m.ID,
			"new":      m.IsNew,
			"modified": m.Modified,
			"state":    m.State.String(),
		}
	}
	cells := make([]any, len(snap.Cells))
	for i, c := range snap.Cells {
		cells[i] = map[string]any{
			"cell": cellKey{c.RowIndex, c.ColumnKey}.String(),
			"old":  c.OldValue,
			"new":  c.NewValue,
		}
	}
	changes, err := snap.Changes.Canonical()
	require.NoError(t, err)

	out, err := ir.MarshalCanonical(map[string]any{
		"rows":    snap.Rows,
		"meta":    meta,
		"cells":   cells,
		"changes": string(changes),
	})
	require.NoError(t, err)
	return string(out)
}
