package grid

import (
	"slices"

	"github.com/roach88/gridstate/internal/ir"
)

// EventType names a grid lifecycle notification.
type EventType string

const (
	// EventBeforeEdit fires before an edit starts. Cancelable.
	EventBeforeEdit EventType = "beforeedit"
	// EventBeforeCommit fires before a changed cell value is written.
	// Cancelable; a veto cancels the edit.
	EventBeforeCommit EventType = "beforecommit"
	// EventAfterEdit fires after a cell value was written.
	EventAfterEdit EventType = "afteredit"
	// EventSelectionChange fires whenever the selection changes.
	EventSelectionChange EventType = "selection-change"
	// EventDataLoaded fires after a dataset was loaded and reconciled.
	EventDataLoaded EventType = "data-loaded"
	// EventPageChanged fires after the current page or page size changed.
	EventPageChanged EventType = "page-changed"
	// EventBeforeSave fires before pending changes are sent to the
	// DataSource. Cancelable.
	EventBeforeSave EventType = "beforesave"
	// EventAfterCommit fires after a save attempt with its outcome.
	EventAfterCommit EventType = "aftercommit"
)

// Cancelable reports whether listeners may veto events of this type.
func (t EventType) Cancelable() bool {
	switch t {
	case EventBeforeEdit, EventBeforeCommit, EventBeforeSave:
		return true
	}
	return false
}

// Event carries the payload of a notification. Fields not listed for a
// type are zero.
//
//	beforeedit        RowIndex ColumnKey Value Row Dirty
//	beforecommit      RowIndex ColumnKey OldValue NewValue Row Dirty
//	afteredit         RowIndex ColumnKey OldValue NewValue Row
//	selection-change  SelectedRows Count
//	data-loaded       TotalItems CurrentPage PageSize
//	page-changed      CurrentPage PageSize TotalPages
//	beforesave        Changes
//	aftercommit       Success Err
//
// Row is a clone; mutating it has no effect on the grid.
//
// beforeedit and beforecommit are delivered while the grid is locked, in
// the middle of the edit they guard. Their listeners must decide from the
// event alone and must not call back into the Grid. Every other event is
// delivered after the grid is unlocked, so those listeners may call any
// Grid method.
type Event struct {
	Type EventType

	RowIndex  int
	ColumnKey string
	Value     ir.Value
	OldValue  ir.Value
	NewValue  ir.Value
	Row       *ir.Row
	// Dirty is whether the grid had pending changes when the event was
	// built.
	Dirty bool

	SelectedRows []int
	Count        int

	TotalItems  int
	CurrentPage int
	PageSize    int
	TotalPages  int

	Changes Changes
	Success bool
	Err     error

	canceled bool
}

// Cancel vetoes a cancelable event. It is a no-op on informational events.
func (e *Event) Cancel() {
	if e.Type.Cancelable() {
		e.canceled = true
	}
}

// Canceled reports whether a listener vetoed the event.
func (e *Event) Canceled() bool {
	return e.canceled
}

// Listener receives grid events. Listeners run synchronously in
// registration order.
type Listener func(*Event)

// emitter dispatches cancelable events at once and queues the rest until
// the grid releases its lock. All methods require the grid lock.
type emitter struct {
	listeners map[EventType][]Listener
	queue     []delivery
}

// delivery is a queued event with the listeners registered when it was
// queued.
type delivery struct {
	ev        *Event
	listeners []Listener
}

func newEmitter() *emitter {
	return &emitter{listeners: make(map[EventType][]Listener)}
}

func (em *emitter) on(t EventType, l Listener) {
	em.listeners[t] = append(em.listeners[t], l)
}

// subscribers returns a copy of the listeners for t, safe to call after
// the lock is released.
func (em *emitter) subscribers(t EventType) []Listener {
	return slices.Clone(em.listeners[t])
}

// emit dispatches a cancelable event and reports whether it went through
// un-vetoed. Informational events are queued for drain and report true.
func (em *emitter) emit(ev *Event) bool {
	if !ev.Type.Cancelable() {
		em.queue = append(em.queue, delivery{ev: ev, listeners: em.subscribers(ev.Type)})
		return true
	}
	return dispatch(ev, em.listeners[ev.Type])
}

// drain hands over the queued events in emit order.
func (em *emitter) drain() []delivery {
	q := em.queue
	em.queue = nil
	return q
}

// deliver runs queued events. Call it without the grid lock.
func deliver(queue []delivery) {
	for _, d := range queue {
		dispatch(d.ev, d.listeners)
	}
}

// dispatch calls listeners in order and reports whether ev went through
// un-vetoed. Delivery stops at the first veto.
func dispatch(ev *Event, listeners []Listener) bool {
	for _, l := range listeners {
		l(ev)
		if ev.canceled {
			return false
		}
	}
	return true
}
