package grid

import (
	"fmt"
	"time"

	"github.com/roach88/gridstate/internal/ir"
)

// CommandType identifies an undoable operation.
type CommandType string

const (
	CommandEdit   CommandType = "edit"
	CommandAdd    CommandType = "add"
	CommandDelete CommandType = "delete"
)

// Command is one entry in the undo/redo history.
type Command struct {
	Type      CommandType
	Data      CommandData
	Timestamp time.Time
	Seq       int64
}

// CommandData is the payload of a Command. Sealed: EditData, AddData and
// DeleteData are the only implementations.
type CommandData interface {
	commandType() CommandType
}

// EditData records a committed cell edit.
type EditData struct {
	RowIndex  int
	ColumnKey string
	OldValue  ir.Value
	NewValue  ir.Value
}

// AddData records an added row. Row is the content at add time.
type AddData struct {
	RowIndex int
	Row      *ir.Row
	ID       string
}

// DeleteData records a row deletion. Added is true when the row was an
// unsaved added row that the delete spliced out.
type DeleteData struct {
	RowIndex int
	Snapshot *ir.Row
	ID       string
	Added    bool
}

func (EditData) commandType() CommandType   { return CommandEdit }
func (AddData) commandType() CommandType    { return CommandAdd }
func (DeleteData) commandType() CommandType { return CommandDelete }

func (c Command) String() string {
	switch d := c.Data.(type) {
	case EditData:
		return fmt.Sprintf("edit %d:%s", d.RowIndex, d.ColumnKey)
	case AddData:
		return fmt.Sprintf("add %d", d.RowIndex)
	case DeleteData:
		return fmt.Sprintf("delete %d", d.RowIndex)
	}
	return string(c.Type)
}
