package grid

import (
	"errors"
	"log/slog"

	"github.com/roach88/gridstate/internal/column"
	"github.com/roach88/gridstate/internal/ir"
)

// EditState is the state of an EditSession.
type EditState int

const (
	Idle EditState = iota
	Editing
)

func (s EditState) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// CommitResult reports what a commit did.
type CommitResult int

const (
	// CommitNone: no edit was open.
	CommitNone CommitResult = iota
	// CommitInvalid: validation failed; the session is still Editing.
	CommitInvalid
	// CommitVetoed: a beforecommit listener vetoed; the edit was canceled.
	CommitVetoed
	// CommitUnchanged: the value equals the original; nothing was recorded.
	CommitUnchanged
	// CommitApplied: the cell was updated and the edit recorded.
	CommitApplied
	// CommitStale: the row disappeared while editing; the edit was dropped.
	CommitStale
	// CommitRefused: the edit could not start. Only returned by Grid.Edit.
	CommitRefused
)

func (r CommitResult) String() string {
	switch r {
	case CommitNone:
		return "none"
	case CommitInvalid:
		return "invalid"
	case CommitVetoed:
		return "vetoed"
	case CommitUnchanged:
		return "unchanged"
	case CommitApplied:
		return "applied"
	case CommitStale:
		return "stale"
	case CommitRefused:
		return "refused"
	}
	return "unknown"
}

// EditSession is the cell editing state machine.
//
// Only one cell is ever open. Starting a new edit while one is open commits
// the open one first, and an invalid commit keeps the old cell open.
type EditSession struct {
	store   *ChangeStore
	history *UndoRedoStack
	events  *emitter
	columns []column.Column
	index   map[string]int

	// navigation bounds, [lo, hi); hi < 0 means the store length
	lo, hi int

	state    EditState
	row      int
	key      string
	original ir.Value
	value    ir.Value
	invalid  *column.ValidationError
	options  []column.Option
	gen      uint64
}

func newEditSession(store *ChangeStore, history *UndoRedoStack, events *emitter, columns []column.Column) *EditSession {
	return &EditSession{
		store:   store,
		history: history,
		events:  events,
		columns: columns,
		index:   column.Index(columns),
		hi:      -1,
	}
}

// State returns Idle or Editing.
func (s *EditSession) State() EditState { return s.state }

// Cell returns the open cell. ok is false when Idle.
func (s *EditSession) Cell() (rowIndex int, key string, ok bool) {
	if s.state != Editing {
		return -1, "", false
	}
	return s.row, s.key, true
}

// OriginalValue returns the cell value when the edit started.
func (s *EditSession) OriginalValue() ir.Value { return s.original }

// Value returns the editor's current value.
func (s *EditSession) Value() ir.Value { return s.value }

// Invalid reports whether the last commit attempt failed validation.
func (s *EditSession) Invalid() bool { return s.invalid != nil }

// Message returns the validation message of the last failed commit.
func (s *EditSession) Message() string {
	if s.invalid == nil {
		return ""
	}
	return s.invalid.Message
}

// Generation identifies the current edit. It changes every time an edit
// starts or ends, so asynchronous work begun for one edit can tell whether
// that edit is still open.
func (s *EditSession) Generation() uint64 { return s.gen }

// Options returns the combo options offered by the open editor.
func (s *EditSession) Options() []column.Option { return s.options }

func (s *EditSession) setBounds(lo, hi int) {
	s.lo, s.hi = lo, hi
}

func (s *EditSession) column(key string) (column.Column, bool) {
	i, ok := s.index[key]
	if !ok {
		return column.Column{}, false
	}
	return s.columns[i], true
}

// Start opens rowIndex/key for editing. Returns false, staying as before,
// when the column is not editable, the row is out of bounds or marked for
// deletion, a beforeedit listener vetoes, or an open edit fails to commit.
func (s *EditSession) Start(rowIndex int, key string) bool {
	if s.state == Editing {
		if s.row == rowIndex && s.key == key {
			return true
		}
		if s.Commit() == CommitInvalid {
			return false
		}
	}

	col, ok := s.column(key)
	if !ok || !col.Editable() {
		return false
	}
	row, ok := s.store.Row(rowIndex)
	if !ok || s.store.IsDeleted(rowIndex) {
		return false
	}

	value := row.Get(key)
	ev := &Event{
		Type:      EventBeforeEdit,
		RowIndex:  rowIndex,
		ColumnKey: key,
		Value:     value,
		Row:       row.Clone(),
		Dirty:     s.store.HasChanges(),
	}
	if !s.events.emit(ev) {
		return false
	}

	s.state = Editing
	s.row = rowIndex
	s.key = key
	s.original = value
	s.value = value
	s.invalid = nil
	s.options = col.Combo().Options
	s.gen++
	return true
}

// SetValue feeds the open editor.
func (s *EditSession) SetValue(v ir.Value) {
	if s.state != Editing {
		return
	}
	if v == nil {
		v = ir.Null{}
	}
	s.value = v
	s.invalid = nil
}

// Commit validates and writes the open edit.
func (s *EditSession) Commit() CommitResult {
	if s.state != Editing {
		return CommitNone
	}
	col, _ := s.column(s.key)

	if err := column.Validate(col, s.value); err != nil {
		var verr *column.ValidationError
		if !errors.As(err, &verr) {
			verr = &column.ValidationError{Column: col.Key, Message: err.Error()}
		}
		s.invalid = verr
		slog.Debug("edit rejected", "row", s.row, "column", s.key, "reason", verr.Message)
		return CommitInvalid
	}

	newValue := column.Normalize(col, s.value)
	if column.Equal(col, s.original, newValue) {
		s.finish()
		return CommitUnchanged
	}

	row, ok := s.store.Row(s.row)
	if !ok || s.store.IsDeleted(s.row) {
		s.finish()
		return CommitStale
	}

	ev := &Event{
		Type:      EventBeforeCommit,
		RowIndex:  s.row,
		ColumnKey: s.key,
		OldValue:  s.original,
		NewValue:  newValue,
		Row:       row.Clone(),
		Dirty:     s.store.HasChanges(),
	}
	if !s.events.emit(ev) {
		s.Cancel()
		return CommitVetoed
	}

	rowIndex, key, oldValue := s.row, s.key, s.original
	s.store.UpdateCell(rowIndex, key, newValue)
	s.history.Record(EditData{
		RowIndex:  rowIndex,
		ColumnKey: key,
		OldValue:  oldValue,
		NewValue:  newValue,
	})
	s.finish()

	s.events.emit(&Event{
		Type:      EventAfterEdit,
		RowIndex:  rowIndex,
		ColumnKey: key,
		OldValue:  oldValue,
		NewValue:  newValue,
		Row:       row.Clone(),
	})
	return CommitApplied
}

// Cancel discards the open edit without touching the store.
func (s *EditSession) Cancel() {
	if s.state != Editing {
		return
	}
	s.finish()
}

func (s *EditSession) finish() {
	s.state = Idle
	s.row = -1
	s.key = ""
	s.original = nil
	s.value = nil
	s.invalid = nil
	s.options = nil
	s.gen++
}

// Navigate commits the open cell, then opens the next (forward) or
// previous editable column, wrapping to the adjacent row. Moving past the
// first or last row only commits. An invalid commit keeps the cell open.
func (s *EditSession) Navigate(forward bool) bool {
	if s.state != Editing {
		return false
	}
	keys := column.EditableKeys(s.columns)
	row, pos := s.row, -1
	for i, k := range keys {
		if k == s.key {
			pos = i
			break
		}
	}

	if s.Commit() == CommitInvalid {
		return false
	}
	if len(keys) == 0 {
		return false
	}

	if forward {
		pos++
	} else {
		pos--
	}
	switch {
	case pos >= len(keys):
		pos = 0
		row++
	case pos < 0:
		pos = len(keys) - 1
		row--
	}

	hi := s.hi
	if hi < 0 || hi > s.store.Len() {
		hi = s.store.Len()
	}
	if row < s.lo || row >= hi {
		return false
	}
	return s.Start(row, keys[pos])
}

// AcceptRemoteOptions installs options fetched for edit gen. Results for an
// edit that has since ended are discarded and false is returned.
func (s *EditSession) AcceptRemoteOptions(gen uint64, opts []column.Option) bool {
	if s.state != Editing || gen != s.gen {
		slog.Debug("discarding stale combo options", "generation", gen, "current", s.gen)
		return false
	}
	s.options = opts
	return true
}
