package grid

import (
	"log/slog"

	"github.com/roach88/gridstate/internal/ir"
)

// DefaultMaxUndo is the default history depth. The oldest command is
// dropped once the cap is reached.
const DefaultMaxUndo = 50

// UndoRedoStack is a bounded linear history replayed through a ChangeStore.
//
// Recording a command clears the redo stack. Undo pops the newest command,
// applies its inverse and pushes it onto the redo stack; Redo mirrors that.
type UndoRedoStack struct {
	store   *ChangeStore
	clock   Clock
	maxSize int
	undo    []Command
	redo    []Command
}

// NewUndoRedoStack creates an empty history over store. maxSize <= 0 uses
// DefaultMaxUndo.
func NewUndoRedoStack(store *ChangeStore, clock Clock, maxSize int) *UndoRedoStack {
	if maxSize <= 0 {
		maxSize = DefaultMaxUndo
	}
	if clock == nil {
		clock = NewClock()
	}
	return &UndoRedoStack{store: store, clock: clock, maxSize: maxSize}
}

// Record pushes a command built from data and clears the redo stack.
func (u *UndoRedoStack) Record(data CommandData) Command {
	cmd := Command{
		Type:      data.commandType(),
		Data:      data,
		Timestamp: u.clock.Now(),
		Seq:       u.clock.Next(),
	}
	u.undo = append(u.undo, cmd)
	if len(u.undo) > u.maxSize {
		u.undo = u.undo[len(u.undo)-u.maxSize:]
	}
	u.redo = nil
	return cmd
}

// CanUndo reports whether there is a command to undo.
func (u *UndoRedoStack) CanUndo() bool { return len(u.undo) > 0 }

// CanRedo reports whether there is a command to redo.
func (u *UndoRedoStack) CanRedo() bool { return len(u.redo) > 0 }

// UndoLen returns the number of undoable commands.
func (u *UndoRedoStack) UndoLen() int { return len(u.undo) }

// RedoLen returns the number of redoable commands.
func (u *UndoRedoStack) RedoLen() int { return len(u.redo) }

// Clear empties both stacks.
func (u *UndoRedoStack) Clear() {
	u.undo = nil
	u.redo = nil
}

// Undo reverts the newest command. Returns false when there is nothing to
// undo. A command whose inverse no longer applies is still moved to the
// redo stack so history stays linear.
func (u *UndoRedoStack) Undo() (Command, bool) {
	if len(u.undo) == 0 {
		return Command{}, false
	}
	cmd := u.undo[len(u.undo)-1]
	u.undo = u.undo[:len(u.undo)-1]

	if !u.revert(cmd) {
		slog.Warn("undo did not apply", "command", cmd.String())
	}
	u.redo = append(u.redo, cmd)
	return cmd, true
}

// Redo re-applies the newest undone command.
func (u *UndoRedoStack) Redo() (Command, bool) {
	if len(u.redo) == 0 {
		return Command{}, false
	}
	cmd := u.redo[len(u.redo)-1]
	u.redo = u.redo[:len(u.redo)-1]

	if !u.apply(cmd) {
		slog.Warn("redo did not apply", "command", cmd.String())
	}
	u.undo = append(u.undo, cmd)
	return cmd, true
}

// remap rebases history onto reloaded data. carried maps the old index of
// every carried-over added row to its new index, and any other row below
// keep stays put. Commands on any remaining row are dropped since that
// row is gone. Returns how many commands were dropped.
func (u *UndoRedoStack) remap(carried map[int]int, keep int) int {
	var dropped int
	u.undo, dropped = remapStack(u.undo, carried, keep)
	var n int
	u.redo, n = remapStack(u.redo, carried, keep)
	return dropped + n
}

func remapStack(stack []Command, carried map[int]int, keep int) ([]Command, int) {
	out := stack[:0]
	for _, cmd := range stack {
		data, ok := remapData(cmd.Data, carried, keep)
		if !ok {
			slog.Debug("dropping stale command", "command", cmd.String())
			continue
		}
		cmd.Data = data
		out = append(out, cmd)
	}
	if len(out) == 0 {
		out = nil
	}
	return out, len(stack) - len(out)
}

func remapIndex(i int, carried map[int]int, keep int) (int, bool) {
	if to, ok := carried[i]; ok {
		return to, true
	}
	return i, i >= 0 && i < keep
}

func remapData(data CommandData, carried map[int]int, keep int) (CommandData, bool) {
	var ok bool
	switch d := data.(type) {
	case EditData:
		d.RowIndex, ok = remapIndex(d.RowIndex, carried, keep)
		return d, ok
	case AddData:
		d.RowIndex, ok = remapIndex(d.RowIndex, carried, keep)
		return d, ok
	case DeleteData:
		d.RowIndex, ok = remapIndex(d.RowIndex, carried, keep)
		return d, ok
	}
	return data, true
}

func (u *UndoRedoStack) revert(cmd Command) bool {
	switch d := cmd.Data.(type) {
	case EditData:
		return u.setCell(d.RowIndex, d.ColumnKey, d.OldValue)
	case AddData:
		return u.store.UndoAddRow(d.RowIndex)
	case DeleteData:
		if d.Added {
			return u.store.RestoreAddedRow(d.RowIndex, d.Snapshot, d.ID)
		}
		return u.store.UndoDeleteRow(d.RowIndex, d.Snapshot)
	}
	return false
}

func (u *UndoRedoStack) apply(cmd Command) bool {
	switch d := cmd.Data.(type) {
	case EditData:
		return u.setCell(d.RowIndex, d.ColumnKey, d.NewValue)
	case AddData:
		return u.store.RestoreAddedRow(d.RowIndex, d.Row, d.ID)
	case DeleteData:
		return u.store.DeleteRow(d.RowIndex)
	}
	return false
}

// setCell writes value and drops the cell record once the cell is back at
// its original value, so undoing every edit leaves no trace.
func (u *UndoRedoStack) setCell(rowIndex int, key string, value ir.Value) bool {
	if !u.store.UpdateCell(rowIndex, key, value) {
		return false
	}
	if rec, ok := u.store.Change(rowIndex, key); ok && ir.Equal(rec.OldValue, rec.NewValue) {
		return u.store.UndoCellEdit(rowIndex, key)
	}
	return true
}
