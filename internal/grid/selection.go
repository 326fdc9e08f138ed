package grid

import "slices"

// HeaderState is the tri-state of the select-all checkbox.
type HeaderState string

const (
	HeaderUnchecked     HeaderState = "unchecked"
	HeaderIndeterminate HeaderState = "indeterminate"
	HeaderChecked       HeaderState = "checked"
)

// SelectionSet tracks selected row positions 0..rowCount-1 of the bound
// page. It is cleared whenever the page is rebound.
type SelectionSet struct {
	rowCount int
	selected map[int]struct{}
	last     int
}

// NewSelectionSet creates an empty selection over rowCount rows.
func NewSelectionSet(rowCount int) *SelectionSet {
	s := &SelectionSet{}
	s.Reset(rowCount)
	return s
}

// Reset clears the selection and rebinds it to rowCount rows.
func (s *SelectionSet) Reset(rowCount int) {
	s.rowCount = max(rowCount, 0)
	s.selected = make(map[int]struct{})
	s.last = -1
}

// RowCount returns the number of selectable rows.
func (s *SelectionSet) RowCount() int { return s.rowCount }

// SelectAll selects every row.
func (s *SelectionSet) SelectAll() {
	for i := 0; i < s.rowCount; i++ {
		s.selected[i] = struct{}{}
	}
}

// DeselectAll clears the selection.
func (s *SelectionSet) DeselectAll() {
	clear(s.selected)
	s.last = -1
}

// Toggle selects or deselects row i. Returns false when i is out of range.
func (s *SelectionSet) Toggle(i int, on bool) bool {
	if i < 0 || i >= s.rowCount {
		return false
	}
	if on {
		s.selected[i] = struct{}{}
		s.last = i
	} else {
		delete(s.selected, i)
		if s.last == i {
			s.last = -1
		}
	}
	return true
}

// IsSelected reports whether row i is selected.
func (s *SelectionSet) IsSelected(i int) bool {
	_, ok := s.selected[i]
	return ok
}

// Selected returns the selected rows in ascending order.
func (s *SelectionSet) Selected() []int {
	out := make([]int, 0, len(s.selected))
	for i := range s.selected {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Count returns the number of selected rows.
func (s *SelectionSet) Count() int { return len(s.selected) }

// LastSelected returns the most recently toggled-on row, or -1.
func (s *SelectionSet) LastSelected() int { return s.last }

// HeaderState computes the select-all checkbox state.
func (s *SelectionSet) HeaderState() HeaderState {
	n := len(s.selected)
	switch {
	case s.rowCount > 0 && n == s.rowCount:
		return HeaderChecked
	case n > 0:
		return HeaderIndeterminate
	}
	return HeaderUnchecked
}
