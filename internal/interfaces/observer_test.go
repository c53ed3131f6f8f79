package interfaces

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingObserver struct {
	events []Event
}

func (r *recordingObserver) Notify(evt Event, _ map[string]any) {
	r.events = append(r.events, evt)
}

func TestNoOpObserverDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		NoOpObserver{}.Notify(EventTruckDocked, map[string]any{"id": 1})
	})
}

func TestMultiObserverFansOut(t *testing.T) {
	a := &recordingObserver{}
	b := &recordingObserver{}
	m := MultiObserver{a, b}

	m.Notify(EventPackageCreated, nil)

	assert.Equal(t, []Event{EventPackageCreated}, a.events)
	assert.Equal(t, []Event{EventPackageCreated}, b.events)
}
