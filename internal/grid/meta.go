package grid

import "fmt"

// RowState is the persistence lifecycle of a row.
type RowState int

const (
	StateNone RowState = iota
	StateCreate
	StateUpdate
	StateDestroy
)

func (s RowState) String() string {
	switch s {
	case StateNone:
		return ""
	case StateCreate:
		return "create"
	case StateUpdate:
		return "update"
	case StateDestroy:
		return "destroy"
	}
	return fmt.Sprintf("RowState(%d)", int(s))
}

// RowMeta is the engine-owned metadata for one row. It lives in a slice
// parallel to the rows and never appears in row data.
type RowMeta struct {
	// ID is the stable identity: the row's id property when present,
	// otherwise a generated temporary id.
	ID       string
	IsNew    bool
	Modified bool
	State    RowState
}
