package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventType_Cancelable(t *testing.T) {
	cancelable := map[EventType]bool{
		EventBeforeEdit:      true,
		EventBeforeCommit:    true,
		EventBeforeSave:      true,
		EventAfterEdit:       false,
		EventSelectionChange: false,
		EventDataLoaded:      false,
		EventPageChanged:     false,
		EventAfterCommit:     false,
	}
	for typ, want := range cancelable {
		assert.Equal(t, want, typ.Cancelable(), string(typ))
	}
}

func TestEmitter_StopsAtFirstVeto(t *testing.T) {
	em := newEmitter()
	var calls []string
	em.on(EventBeforeEdit, func(*Event) { calls = append(calls, "first") })
	em.on(EventBeforeEdit, func(e *Event) {
		calls = append(calls, "second")
		e.Cancel()
	})
	em.on(EventBeforeEdit, func(*Event) { calls = append(calls, "third") })

	ev := &Event{Type: EventBeforeEdit}
	assert.False(t, em.emit(ev))
	assert.True(t, ev.Canceled())
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestEvent_CancelInformational(t *testing.T) {
	em := newEmitter()
	em.on(EventAfterEdit, func(e *Event) { e.Cancel() })

	ev := &Event{Type: EventAfterEdit}
	assert.True(t, em.emit(ev), "informational events cannot be vetoed")
	deliver(em.drain())
	assert.False(t, ev.Canceled())
}

func TestEmitter_QueuesInformationalEvents(t *testing.T) {
	em := newEmitter()
	var got []EventType
	record := func(e *Event) { got = append(got, e.Type) }
	em.on(EventAfterEdit, record)
	em.on(EventSelectionChange, record)
	em.on(EventBeforeEdit, record)

	em.emit(&Event{Type: EventAfterEdit})
	em.emit(&Event{Type: EventSelectionChange})
	assert.Empty(t, got, "informational events wait for drain")

	em.emit(&Event{Type: EventBeforeEdit})
	assert.Equal(t, []EventType{EventBeforeEdit}, got, "cancelable events dispatch at once")

	// listeners added after queueing do not see the queued events
	em.on(EventAfterEdit, func(*Event) { t.Error("late listener called") })

	deliver(em.drain())
	assert.Equal(t, []EventType{EventBeforeEdit, EventAfterEdit, EventSelectionChange}, got)
	assert.Empty(t, em.drain())
}

func TestGridError(t *testing.T) {
	err := newGridError(ErrCodeInvalidPage, "page %d out of range", 7)
	assert.Equal(t, "INVALID_PAGE: page 7 out of range", err.Error())
	assert.True(t, IsCode(err, ErrCodeInvalidPage))
	assert.False(t, IsCode(err, ErrCodeCanceled))
	assert.False(t, IsCode(assert.AnError, ErrCodeInvalidPage))
}

func TestRowState_String(t *testing.T) {
	assert.Equal(t, "", StateNone.String())
	assert.Equal(t, "create", StateCreate.String())
	assert.Equal(t, "update", StateUpdate.String())
	assert.Equal(t, "destroy", StateDestroy.String())
	assert.Equal(t, "RowState(9)", RowState(9).String())
}
