package grid

import (
	"cmp"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/roach88/gridstate/internal/column"
	"github.com/roach88/gridstate/internal/ir"
)

// CellChange is a pending edit of one existing cell.
type CellChange struct {
	RowIndex  int
	ColumnKey string
	OldValue  ir.Value // value before the first edit, kept across re-edits
	NewValue  ir.Value
	Timestamp time.Time
	Seq       int64
}

type cellKey struct {
	row int
	col string
}

func (k cellKey) String() string {
	return strconv.Itoa(k.row) + ":" + k.col
}

// Changes is the diff handed to a DataSource on save. Every row is a clone.
type Changes struct {
	Modified []*ir.Row `json:"modified"`
	Added    []*ir.Row `json:"added"`
	Deleted  []*ir.Row `json:"deleted"`
}

// Empty reports whether there is nothing to persist.
func (c Changes) Empty() bool {
	return len(c.Modified) == 0 && len(c.Added) == 0 && len(c.Deleted) == 0
}

// Canonical renders the diff as canonical JSON for snapshots.
func (c Changes) Canonical() ([]byte, error) {
	return ir.MarshalCanonical(map[string]any{
		"modified": nonNilRows(c.Modified),
		"added":    nonNilRows(c.Added),
		"deleted":  nonNilRows(c.Deleted),
	})
}

func nonNilRows(rows []*ir.Row) []*ir.Row {
	if rows == nil {
		return []*ir.Row{}
	}
	return rows
}

// ChangeStore tracks modified cells, added rows and deleted rows against a
// row slice.
//
// INVARIANTS:
//   - at most one CellChange per (row, column)
//   - rows in the added set never have CellChange records
//   - existing-row deletes are soft: the row stays in the slice with
//     StateDestroy and a snapshot in the deleted map
//   - added-row deletes are hard: the row is spliced out and every tracked
//     index above it shifts down by one
type ChangeStore struct {
	columns    []column.Column
	idProperty string
	ids        IDGenerator
	clock      Clock

	rows []*ir.Row
	meta []RowMeta

	modified map[cellKey]*CellChange
	added    map[int]struct{}
	deleted  map[int]*ir.Row
}

// NewChangeStore creates an empty store for the given columns.
func NewChangeStore(columns []column.Column, idProperty string, ids IDGenerator, clock Clock) *ChangeStore {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	if clock == nil {
		clock = NewClock()
	}
	s := &ChangeStore{
		columns:    columns,
		idProperty: idProperty,
		ids:        ids,
		clock:      clock,
	}
	s.resetTracking()
	return s
}

func (s *ChangeStore) resetTracking() {
	s.modified = make(map[cellKey]*CellChange)
	s.added = make(map[int]struct{})
	s.deleted = make(map[int]*ir.Row)
}

// Bind replaces the dataset and discards all tracking.
func (s *ChangeStore) Bind(rows []*ir.Row) {
	s.bindRows(rows)
	s.resetTracking()
}

// bindRows replaces rows and metadata, leaving tracking structures alone.
func (s *ChangeStore) bindRows(rows []*ir.Row) {
	s.rows = make([]*ir.Row, len(rows))
	s.meta = make([]RowMeta, len(rows))
	for i, r := range rows {
		if r == nil {
			r = ir.NewRow()
		}
		s.rows[i] = r
		s.meta[i] = RowMeta{ID: s.identify(r)}
	}
}

func (s *ChangeStore) identify(r *ir.Row) string {
	if s.idProperty != "" {
		if v, ok := r.Lookup(s.idProperty); ok && !column.IsEmpty(v) {
			return ir.Stringify(v)
		}
	}
	return s.ids.Generate()
}

// Reset empties the dataset and all tracking.
func (s *ChangeStore) Reset() {
	s.Bind(nil)
}

// Len returns the number of rows, including rows marked for deletion.
func (s *ChangeStore) Len() int {
	return len(s.rows)
}

// Rows returns the live row slice. Callers must not mutate it.
func (s *ChangeStore) Rows() []*ir.Row {
	return s.rows
}

// Row returns the live row at index i.
func (s *ChangeStore) Row(i int) (*ir.Row, bool) {
	if !s.inBounds(i) {
		return nil, false
	}
	return s.rows[i], true
}

// Meta returns the metadata of row i.
func (s *ChangeStore) Meta(i int) (RowMeta, bool) {
	if !s.inBounds(i) {
		return RowMeta{}, false
	}
	return s.meta[i], true
}

// IsAdded reports whether row i was created client-side and not yet saved.
func (s *ChangeStore) IsAdded(i int) bool {
	_, ok := s.added[i]
	return ok
}

// IsDeleted reports whether row i is marked for deletion.
func (s *ChangeStore) IsDeleted(i int) bool {
	_, ok := s.deleted[i]
	return ok
}

func (s *ChangeStore) inBounds(i int) bool {
	return i >= 0 && i < len(s.rows)
}

// Change returns the pending record for a cell.
func (s *ChangeStore) Change(rowIndex int, key string) (CellChange, bool) {
	c, ok := s.modified[cellKey{rowIndex, key}]
	if !ok {
		return CellChange{}, false
	}
	return *c, true
}

// ModifiedCells returns all pending cell records ordered by sequence.
func (s *ChangeStore) ModifiedCells() []CellChange {
	out := make([]CellChange, 0, len(s.modified))
	for _, c := range s.modified {
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b CellChange) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	return out
}

// UpdateCell writes value into row rowIndex. Added rows are mutated without
// a cell record. Returns false when rowIndex is out of bounds.
func (s *ChangeStore) UpdateCell(rowIndex int, key string, value ir.Value) bool {
	if !s.inBounds(rowIndex) {
		return false
	}
	if value == nil {
		value = ir.Null{}
	}
	row := s.rows[rowIndex]

	if s.IsAdded(rowIndex) {
		row.Set(key, value)
		return true
	}

	ck := cellKey{rowIndex, key}
	if rec, ok := s.modified[ck]; ok {
		rec.NewValue = value
		rec.Timestamp = s.clock.Now()
		rec.Seq = s.clock.Next()
	} else {
		s.modified[ck] = &CellChange{
			RowIndex:  rowIndex,
			ColumnKey: key,
			OldValue:  row.Get(key),
			NewValue:  value,
			Timestamp: s.clock.Now(),
			Seq:       s.clock.Next(),
		}
	}
	row.Set(key, value)

	m := &s.meta[rowIndex]
	m.Modified = true
	if m.State != StateDestroy {
		m.State = StateUpdate
	}
	return true
}

// NewRow builds a row from column defaults merged with initial.
// Action columns get no value.
func (s *ChangeStore) NewRow(initial *ir.Row) *ir.Row {
	row := ir.NewRow()
	for _, c := range s.columns {
		if c.Action {
			continue
		}
		row.Set(c.Key, column.DefaultValue(c))
	}
	row.Merge(initial)
	return row
}

// AddNewRow appends a row built from column defaults and initial, with a
// generated temporary id, and returns the live row.
func (s *ChangeStore) AddNewRow(initial *ir.Row) *ir.Row {
	row := s.NewRow(initial)
	s.insertAdded(len(s.rows), row, s.ids.Generate())
	return row
}

// insertAdded places row at index as an added row and shifts every tracked
// index at or above it up by one.
func (s *ChangeStore) insertAdded(index int, row *ir.Row, id string) {
	s.shiftFrom(index, +1)
	s.rows = slices.Insert(s.rows, index, row)
	s.meta = slices.Insert(s.meta, index, RowMeta{ID: id, IsNew: true, State: StateCreate})
	s.added[index] = struct{}{}
}

// removeAt splices row index out and shifts every tracked index above it
// down by one.
func (s *ChangeStore) removeAt(index int) {
	s.rows = slices.Delete(s.rows, index, index+1)
	s.meta = slices.Delete(s.meta, index, index+1)
	delete(s.added, index)
	delete(s.deleted, index)
	for k := range s.modified {
		if k.row == index {
			delete(s.modified, k)
		}
	}
	s.shiftFrom(index+1, -1)
}

// shiftFrom moves every tracked index >= from by delta.
func (s *ChangeStore) shiftFrom(from, delta int) {
	added := make(map[int]struct{}, len(s.added))
	for i := range s.added {
		if i >= from {
			i += delta
		}
		added[i] = struct{}{}
	}
	s.added = added

	deleted := make(map[int]*ir.Row, len(s.deleted))
	for i, snap := range s.deleted {
		if i >= from {
			i += delta
		}
		deleted[i] = snap
	}
	s.deleted = deleted

	modified := make(map[cellKey]*CellChange, len(s.modified))
	for k, rec := range s.modified {
		if k.row >= from {
			k.row += delta
			rec.RowIndex = k.row
		}
		modified[k] = rec
	}
	s.modified = modified
}

// DeleteRow removes an added row outright, or marks an existing row for
// deletion. Returns false when out of bounds or already deleted.
func (s *ChangeStore) DeleteRow(rowIndex int) bool {
	if !s.inBounds(rowIndex) {
		return false
	}
	if s.IsAdded(rowIndex) {
		s.removeAt(rowIndex)
		return true
	}
	if s.IsDeleted(rowIndex) {
		return false
	}
	s.deleted[rowIndex] = s.rows[rowIndex].Clone()
	s.meta[rowIndex].State = StateDestroy
	return true
}

// UndoCellEdit restores a cell's original value and drops its record. The
// row stays modified while other records reference it.
func (s *ChangeStore) UndoCellEdit(rowIndex int, key string) bool {
	ck := cellKey{rowIndex, key}
	rec, ok := s.modified[ck]
	if !ok || !s.inBounds(rowIndex) {
		return false
	}
	s.rows[rowIndex].Set(key, rec.OldValue)
	delete(s.modified, ck)

	if !s.rowHasRecords(rowIndex) {
		m := &s.meta[rowIndex]
		m.Modified = false
		if m.State == StateUpdate {
			m.State = StateNone
		}
	}
	return true
}

func (s *ChangeStore) rowHasRecords(rowIndex int) bool {
	for k := range s.modified {
		if k.row == rowIndex {
			return true
		}
	}
	return false
}

// UndoAddRow removes an added row. Returns false if rowIndex is not an
// added row.
func (s *ChangeStore) UndoAddRow(rowIndex int) bool {
	if !s.IsAdded(rowIndex) || !s.inBounds(rowIndex) {
		return false
	}
	s.removeAt(rowIndex)
	return true
}

// RestoreAddedRow re-inserts a previously removed added row at rowIndex
// with its original id. Used to redo an add and to undo the delete of an
// added row.
func (s *ChangeStore) RestoreAddedRow(rowIndex int, snapshot *ir.Row, id string) bool {
	if rowIndex < 0 || rowIndex > len(s.rows) || snapshot == nil {
		return false
	}
	s.insertAdded(rowIndex, snapshot.Clone(), id)
	return true
}

// UndoDeleteRow restores a soft-deleted row from snapshot in place and
// clears its deletion mark.
func (s *ChangeStore) UndoDeleteRow(rowIndex int, snapshot *ir.Row) bool {
	if !s.IsDeleted(rowIndex) || !s.inBounds(rowIndex) {
		return false
	}
	if snapshot == nil {
		snapshot = s.deleted[rowIndex]
	}
	s.rows[rowIndex].ReplaceWith(snapshot)
	delete(s.deleted, rowIndex)

	m := &s.meta[rowIndex]
	switch {
	case m.IsNew:
		m.State = StateCreate
	case m.Modified:
		m.State = StateUpdate
	default:
		m.State = StateNone
	}
	return true
}

// GetChanges partitions pending work into modified, added and deleted
// rows, each in ascending row order. A row appears in at most one list:
// modified excludes added and deleted rows.
func (s *ChangeStore) GetChanges() Changes {
	var ch Changes

	seen := make(map[int]struct{})
	var modified []int
	for k := range s.modified {
		if _, dup := seen[k.row]; dup || s.IsAdded(k.row) || s.IsDeleted(k.row) {
			continue
		}
		seen[k.row] = struct{}{}
		modified = append(modified, k.row)
	}
	slices.Sort(modified)
	for _, i := range modified {
		ch.Modified = append(ch.Modified, s.rows[i].Clone())
	}

	for _, i := range sortedKeys(s.added) {
		ch.Added = append(ch.Added, s.rows[i].Clone())
	}
	for _, i := range sortedKeys(s.deleted) {
		ch.Deleted = append(ch.Deleted, s.deleted[i].Clone())
	}
	return ch
}

// HasChanges reports whether anything is pending.
func (s *ChangeStore) HasChanges() bool {
	return len(s.modified) > 0 || len(s.added) > 0 || len(s.deleted) > 0
}

// AdoptIDs copies primary keys from saved, the Added list of the diff
// GetChanges returned, onto the matching added rows. Only rows still
// without an id take one. Call it before ClearChanges, with no change to
// the store since GetChanges. Returns how many rows took an id.
func (s *ChangeStore) AdoptIDs(saved []*ir.Row) int {
	if s.idProperty == "" {
		return 0
	}
	n := 0
	for k, i := range sortedKeys(s.added) {
		if k >= len(saved) || saved[k] == nil {
			break
		}
		v, ok := saved[k].Lookup(s.idProperty)
		if !ok || column.IsEmpty(v) {
			continue
		}
		if cur, ok := s.rows[i].Lookup(s.idProperty); ok && !column.IsEmpty(cur) {
			continue
		}
		s.rows[i].Set(s.idProperty, v)
		s.meta[i].ID = ir.Stringify(v)
		n++
	}
	return n
}

// ClearChanges accepts all pending work as persisted: rows marked for
// deletion leave the slice, every other row becomes a plain existing row.
// Call only after a confirmed successful save.
func (s *ChangeStore) ClearChanges() {
	rows := s.rows[:0:0]
	meta := s.meta[:0:0]
	for i, r := range s.rows {
		if s.IsDeleted(i) {
			continue
		}
		rows = append(rows, r)
		meta = append(meta, RowMeta{ID: s.meta[i].ID})
	}
	if dropped := len(s.rows) - len(rows); dropped > 0 {
		slog.Debug("cleared deleted rows", "count", dropped)
	}
	s.rows = rows
	s.meta = meta
	s.resetTracking()
}

// Snapshot captures the store's observable state: rows and partitioned
// changes. Used to compare states in reconciliation and history checks.
func (s *ChangeStore) Snapshot() StoreSnapshot {
	snap := StoreSnapshot{
		Rows:    ir.CloneRows(s.rows),
		Changes: s.GetChanges(),
		Meta:    make([]RowMeta, len(s.meta)),
	}
	copy(snap.Meta, s.meta)
	snap.Cells = s.ModifiedCells()
	return snap
}

// StoreSnapshot is a detached copy of a ChangeStore's state.
type StoreSnapshot struct {
	Rows    []*ir.Row
	Meta    []RowMeta
	Cells   []CellChange
	Changes Changes
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
