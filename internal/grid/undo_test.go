package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridstate/internal/ir"
)

func TestUndoRedoStack_RecordClearsRedo(t *testing.T) {
	s := newTestStore(2)
	u := NewUndoRedoStack(s, NewClock(), 0)

	s.UpdateCell(0, "name", ir.String("A2"))
	u.Record(EditData{RowIndex: 0, ColumnKey: "name", OldValue: ir.String("A"), NewValue: ir.String("A2")})
	_, ok := u.Undo()
	require.True(t, ok)
	require.True(t, u.CanRedo())

	u.Record(EditData{RowIndex: 1, ColumnKey: "name", OldValue: ir.String("B"), NewValue: ir.String("B2")})
	assert.False(t, u.CanRedo())
	assert.Equal(t, 1, u.UndoLen())
}

func TestUndoRedoStack_Bounded(t *testing.T) {
	s := newTestStore(1)
	u := NewUndoRedoStack(s, NewClock(), 3)

	for i := 0; i < 5; i++ {
		u.Record(EditData{RowIndex: 0, ColumnKey: "qty", OldValue: ir.Number(i), NewValue: ir.Number(i + 1)})
	}
	require.Equal(t, 3, u.UndoLen())

	// the oldest two were dropped
	cmd, ok := u.Undo()
	require.True(t, ok)
	assert.Equal(t, ir.Number(4), cmd.Data.(EditData).OldValue)
	assert.Equal(t, int64(5), cmd.Seq)
}

func TestUndoRedoStack_EmptyStacks(t *testing.T) {
	u := NewUndoRedoStack(newTestStore(0), nil, 0)

	_, ok := u.Undo()
	assert.False(t, ok)
	_, ok = u.Redo()
	assert.False(t, ok)
	assert.False(t, u.CanUndo())
	assert.False(t, u.CanRedo())
}

func TestUndoRedoStack_StaleCommandStillMoves(t *testing.T) {
	s := newTestStore(1)
	u := NewUndoRedoStack(s, NewClock(), 0)

	u.Record(AddData{RowIndex: 4, Row: ir.NewRow(), ID: "temp_9"})
	_, ok := u.Undo()
	require.True(t, ok, "undo pops even when the inverse does not apply")
	assert.True(t, u.CanRedo())
	assert.Equal(t, 1, s.Len())
}

func TestUndoRedoStack_Remap(t *testing.T) {
	u := NewUndoRedoStack(newTestStore(0), nil, 0)
	u.Record(EditData{RowIndex: 2, ColumnKey: "name"})
	u.Record(AddData{RowIndex: 3})
	u.Record(DeleteData{RowIndex: 1})

	assert.Zero(t, u.remap(map[int]int{2: 5, 3: 6}, 2))

	assert.Equal(t, 5, u.undo[0].Data.(EditData).RowIndex)
	assert.Equal(t, 6, u.undo[1].Data.(AddData).RowIndex)
	assert.Equal(t, 1, u.undo[2].Data.(DeleteData).RowIndex)
}

func TestUndoRedoStack_RemapDropsMissingRows(t *testing.T) {
	u := NewUndoRedoStack(newTestStore(0), nil, 0)
	u.Record(AddData{RowIndex: 5})
	u.Record(EditData{RowIndex: 2, ColumnKey: "name"})
	u.Record(EditData{RowIndex: 1, ColumnKey: "qty"})
	u.Record(DeleteData{RowIndex: 3})
	_, ok := u.Undo()
	require.True(t, ok)

	// two rows reloaded, the added row moved from 5 to 2
	assert.Equal(t, 2, u.remap(map[int]int{5: 2}, 2))

	require.Equal(t, 2, u.UndoLen())
	assert.Equal(t, 2, u.undo[0].Data.(AddData).RowIndex)
	assert.Equal(t, EditData{RowIndex: 1, ColumnKey: "qty"}, u.undo[1].Data)
	assert.False(t, u.CanRedo(), "the undone delete of row 3 is gone too")
}

func TestCommand_String(t *testing.T) {
	u := NewUndoRedoStack(newTestStore(0), NewClock(), 0)
	cmd := u.Record(EditData{RowIndex: 0, ColumnKey: "name"})
	assert.Equal(t, CommandEdit, cmd.Type)
	assert.Contains(t, cmd.String(), "edit")
}

// Any sequence of commits undone in full returns to the starting state;
// redone in full it reproduces the end state.
func TestGrid_UndoRedoInverseLaw(t *testing.T) {
	g := newTestGrid(t, 3)

	steps := []func(){
		func() { mustApply(t, g, 0, "name", "A2") },
		func() { mustApply(t, g, 1, "qty", "5") },
		func() { _, ok := g.AddRow(ir.NewRow(ir.P("name", "D"))); require.True(t, ok) },
		func() { mustApply(t, g, 3, "name", "D2") },
		func() { require.True(t, g.DeleteRow(2)) },
		func() { mustApply(t, g, 0, "name", "A3") },
		func() { require.True(t, g.DeleteRow(3)) },
		func() { _, ok := g.AddRow(ir.NewRow(ir.P("name", "E"))); require.True(t, ok) },
		func() { mustApply(t, g, 1, "done", true) },
	}

	initial := state(t, g)
	var after []string
	for _, step := range steps {
		step()
		after = append(after, state(t, g))
	}
	final := after[len(after)-1]

	for i := len(steps) - 1; i >= 0; i-- {
		require.True(t, g.Undo())
		if i > 0 {
			assert.Equal(t, after[i-1], state(t, g), "after undoing step %d", i)
		}
	}
	assert.Equal(t, initial, state(t, g))
	assert.False(t, g.HasChanges())
	assert.False(t, g.CanUndo())

	for range steps {
		require.True(t, g.Redo())
	}
	assert.Equal(t, final, state(t, g))
	assert.False(t, g.CanRedo())
}

func mustApply(t *testing.T, g *Grid, row int, key string, v any) {
	t.Helper()
	res, err := g.Edit(row, key, ir.MustFromAny(v))
	require.NoError(t, err)
	require.Equal(t, CommitApplied, res, "edit %d/%s", row, key)
}

func TestGrid_UndoCancelsOpenEdit(t *testing.T) {
	g := newTestGrid(t, 2)
	mustApply(t, g, 0, "name", "A2")

	require.True(t, g.StartEdit(1, "name"))
	g.SetEditValue(ir.String("unsaved"))
	require.True(t, g.Undo())

	st, _, _ := g.EditState()
	assert.Equal(t, Idle, st)
	v, _ := g.Cell(1, "name")
	assert.Equal(t, ir.String("B"), v)
	v, _ = g.Cell(0, "name")
	assert.Equal(t, ir.String("A"), v)
}
