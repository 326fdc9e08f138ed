package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridstate/internal/column"
	"github.com/roach88/gridstate/internal/ir"
)

func newTestSession(n int) (*EditSession, *ChangeStore, *emitter) {
	store := newTestStore(n)
	events := newEmitter()
	history := NewUndoRedoStack(store, NewClock(), 0)
	return newEditSession(store, history, events, testColumns()), store, events
}

func TestEditSession_StartRefusals(t *testing.T) {
	s, store, _ := newTestSession(2)
	store.DeleteRow(1)

	tests := []struct {
		name string
		row  int
		key  string
	}{
		{"read-only column", 0, "id"},
		{"action column", 0, "actions"},
		{"unknown column", 0, "missing"},
		{"deleted row", 1, "name"},
		{"row out of bounds", 5, "name"},
		{"negative row", -1, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, s.Start(tt.row, tt.key))
			assert.Equal(t, Idle, s.State())
		})
	}
}

func TestEditSession_StartAndCommit(t *testing.T) {
	s, store, _ := newTestSession(1)

	require.True(t, s.Start(0, "qty"))
	row, key, ok := s.Cell()
	require.True(t, ok)
	assert.Equal(t, 0, row)
	assert.Equal(t, "qty", key)
	assert.Equal(t, ir.Number(0), s.OriginalValue())

	assert.True(t, s.Start(0, "qty"), "same cell is a no-op")

	s.SetValue(ir.String(" 12.50 "))
	assert.Equal(t, CommitApplied, s.Commit())
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, ir.Number(12.5), store.Rows()[0].Get("qty"))
	assert.Equal(t, CommitNone, s.Commit())
}

func TestEditSession_RequiredFieldGate(t *testing.T) {
	s, store, _ := newTestSession(1)

	for _, empty := range []ir.Value{ir.String(""), ir.Null{}, nil} {
		require.True(t, s.Start(0, "name"))
		s.SetValue(empty)
		assert.Equal(t, CommitInvalid, s.Commit())
		assert.Equal(t, Editing, s.State(), "invalid commit keeps the editor open")
		assert.True(t, s.Invalid())
		assert.Equal(t, "Name is required", s.Message())
		s.Cancel()
	}

	assert.False(t, store.HasChanges())
	assert.Equal(t, ir.String("A"), store.Rows()[0].Get("name"))
}

func TestEditSession_SetValueClearsInvalid(t *testing.T) {
	s, _, _ := newTestSession(1)
	require.True(t, s.Start(0, "qty"))

	s.SetValue(ir.Number(-1))
	require.Equal(t, CommitInvalid, s.Commit())
	assert.Equal(t, "Value must be at least 0", s.Message())

	s.SetValue(ir.Number(1))
	assert.False(t, s.Invalid())
	assert.Equal(t, CommitApplied, s.Commit())
}

func TestEditSession_NoOpSuppression(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value ir.Value
	}{
		{"same text", "name", ir.String("A")},
		{"number as text", "qty", ir.String("0")},
		{"number with fraction", "qty", ir.String("0.0")},
		{"same bool", "done", ir.Bool(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store, _ := newTestSession(1)
			require.True(t, s.Start(0, tt.key))
			s.SetValue(tt.value)

			assert.Equal(t, CommitUnchanged, s.Commit())
			assert.False(t, store.HasChanges())
			assert.False(t, s.history.CanUndo())
			m, _ := store.Meta(0)
			assert.False(t, m.Modified)
		})
	}
}

func TestEditSession_BeforeEditVeto(t *testing.T) {
	s, _, events := newTestSession(1)
	events.on(EventBeforeEdit, func(e *Event) {
		if e.ColumnKey == "qty" {
			e.Cancel()
		}
	})

	assert.False(t, s.Start(0, "qty"))
	assert.True(t, s.Start(0, "name"))
}

func TestEditSession_BeforeCommitVeto(t *testing.T) {
	s, store, events := newTestSession(1)
	var seen *Event
	events.on(EventBeforeCommit, func(e *Event) {
		seen = e
		e.Cancel()
	})
	var afterEdits int
	events.on(EventAfterEdit, func(*Event) { afterEdits++ })

	require.True(t, s.Start(0, "name"))
	s.SetValue(ir.String("Z"))
	assert.Equal(t, CommitVetoed, s.Commit())
	assert.Equal(t, Idle, s.State())
	deliver(events.drain())

	require.NotNil(t, seen)
	assert.Equal(t, ir.String("A"), seen.OldValue)
	assert.Equal(t, ir.String("Z"), seen.NewValue)
	assert.Equal(t, 0, afterEdits)
	assert.False(t, store.HasChanges())
}

func TestEditSession_AfterEditPayload(t *testing.T) {
	s, _, events := newTestSession(1)
	var got *Event
	events.on(EventAfterEdit, func(e *Event) { got = e })

	require.True(t, s.Start(0, "qty"))
	s.SetValue(ir.String("3"))
	require.Equal(t, CommitApplied, s.Commit())
	assert.Nil(t, got, "afteredit is queued until the grid unlocks")
	deliver(events.drain())

	require.NotNil(t, got)
	assert.Equal(t, 0, got.RowIndex)
	assert.Equal(t, "qty", got.ColumnKey)
	assert.Equal(t, ir.Number(0), got.OldValue)
	assert.Equal(t, ir.Number(3), got.NewValue)
	assert.Equal(t, ir.Number(0), got.Row.Get("qty"), "row is captured before the write")
}

func TestEditSession_StaleCommit(t *testing.T) {
	s, store, _ := newTestSession(2)
	require.True(t, s.Start(1, "name"))
	s.SetValue(ir.String("B2"))

	store.DeleteRow(1)
	assert.Equal(t, CommitStale, s.Commit())
	_, ok := store.Change(1, "name")
	assert.False(t, ok)
}

func TestEditSession_StartingAnotherCellCommitsFirst(t *testing.T) {
	s, store, _ := newTestSession(2)

	require.True(t, s.Start(0, "name"))
	s.SetValue(ir.String("A2"))
	require.True(t, s.Start(1, "name"))
	assert.Equal(t, ir.String("A2"), store.Rows()[0].Get("name"))

	s.SetValue(ir.String(""))
	assert.False(t, s.Start(0, "qty"), "invalid open edit blocks the move")
	_, key, _ := s.Cell()
	assert.Equal(t, "name", key)
}

func TestEditSession_Navigate(t *testing.T) {
	type pos struct {
		row int
		key string
	}
	tests := []struct {
		name    string
		start   pos
		forward bool
		want    *pos
	}{
		{"next column", pos{0, "name"}, true, &pos{0, "qty"}},
		{"wrap to next row", pos{0, "done"}, true, &pos{1, "name"}},
		{"previous column", pos{1, "qty"}, false, &pos{1, "name"}},
		{"wrap to previous row", pos{1, "name"}, false, &pos{0, "done"}},
		{"past last row", pos{2, "done"}, true, nil},
		{"before first row", pos{0, "name"}, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestSession(3)
			require.True(t, s.Start(tt.start.row, tt.start.key))

			ok := s.Navigate(tt.forward)
			if tt.want == nil {
				assert.False(t, ok)
				assert.Equal(t, Idle, s.State(), "the open cell was committed")
				return
			}
			require.True(t, ok)
			row, key, _ := s.Cell()
			assert.Equal(t, *tt.want, pos{row, key})
		})
	}
}

func TestEditSession_NavigateRespectsBounds(t *testing.T) {
	s, _, _ := newTestSession(4)
	s.setBounds(0, 2)

	require.True(t, s.Start(1, "done"))
	assert.False(t, s.Navigate(true))
}

func TestEditSession_NavigateInvalidStays(t *testing.T) {
	s, _, _ := newTestSession(2)
	require.True(t, s.Start(0, "name"))
	s.SetValue(ir.String(""))

	assert.False(t, s.Navigate(true))
	row, key, ok := s.Cell()
	require.True(t, ok)
	assert.Equal(t, 0, row)
	assert.Equal(t, "name", key)
}

func TestEditSession_RemoteOptionsGeneration(t *testing.T) {
	cols := []column.Column{{
		Key:    "status",
		Label:  "Status",
		Editor: column.ComboEditor{Combo: column.ComboConfig{QueryMode: column.QueryRemote, DataSource: "/api/status"}},
	}, {
		Key: "note", Label: "Note", Editor: column.TextEditor{},
	}}
	store := NewChangeStore(cols, "id", NewFixedGenerator("temp_1"), NewClock())
	store.Bind([]*ir.Row{ir.NewRow(ir.P("id", 1), ir.P("status", "open"), ir.P("note", ""))})
	s := newEditSession(store, NewUndoRedoStack(store, nil, 0), newEmitter(), cols)

	require.True(t, s.Start(0, "status"))
	gen := s.Generation()
	opts := []column.Option{{Value: ir.String("open"), Display: "Open"}}

	assert.True(t, s.AcceptRemoteOptions(gen, opts))
	assert.Equal(t, opts, s.Options())

	// the fetch for the first edit resolves after the user moved on
	require.True(t, s.Start(0, "note"))
	assert.False(t, s.AcceptRemoteOptions(gen, opts))
	assert.Empty(t, s.Options())

	s.Cancel()
	assert.False(t, s.AcceptRemoteOptions(s.Generation(), opts))
}
