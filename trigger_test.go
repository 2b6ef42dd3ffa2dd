package cio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// statesWithActivations builds one world state per row of activations
func statesWithActivations(activations ...[]float64) []WorldState {
	states := make([]WorldState, len(activations))
	for t, row := range activations {
		states[t].Step = t
		states[t].Contacts = make([]ContactState, len(row))
		for j, c := range row {
			states[t].Contacts[j].Activation = c
		}
	}

	return states
}

type eventCapture struct {
	events []ContactEvent
}

func (ec *eventCapture) capture(event ContactEvent) {
	ec.events = append(ec.events, event)
}

func TestContactEvents(t *testing.T) {
	states := statesWithActivations(
		[]float64{0.9, 0.1},
		[]float64{0.8, 0.6},
		[]float64{0.2, 0.7},
		[]float64{0.1, 0.4},
	)

	events := ContactEvents(states, 0.5)

	expected := []ContactEvent{
		{Type: CONTACT_ENGAGE, Step: 0, Contact: 0, Activation: 0.9},
		{Type: CONTACT_HOLD, Step: 1, Contact: 0, Activation: 0.8},
		{Type: CONTACT_ENGAGE, Step: 1, Contact: 1, Activation: 0.6},
		{Type: CONTACT_RELEASE, Step: 2, Contact: 0, Activation: 0.2},
		{Type: CONTACT_HOLD, Step: 2, Contact: 1, Activation: 0.7},
		{Type: CONTACT_RELEASE, Step: 3, Contact: 1, Activation: 0.4},
	}
	assert.Equal(t, expected, events)
}

func TestContactEvents_ThresholdIsInclusive(t *testing.T) {
	events := ContactEvents(statesWithActivations([]float64{0.5}), 0.5)

	assert.Len(t, events, 1)
	assert.Equal(t, CONTACT_ENGAGE, events[0].Type)
}

func TestContactEvents_NeverEngaged(t *testing.T) {
	assert.Empty(t, ContactEvents(statesWithActivations([]float64{0}, []float64{0.2}), 0.5))
}

func TestEvents_Subscribe(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}

	events.Subscribe(CONTACT_ENGAGE, capture.capture)

	assert.Len(t, events.listeners[CONTACT_ENGAGE], 1)
}

func TestEvents_Publish(t *testing.T) {
	events := NewEvents()
	engaged1 := &eventCapture{}
	engaged2 := &eventCapture{}
	released := &eventCapture{}

	events.Subscribe(CONTACT_ENGAGE, engaged1.capture)
	events.Subscribe(CONTACT_ENGAGE, engaged2.capture)
	events.Subscribe(CONTACT_RELEASE, released.capture)

	states := statesWithActivations([]float64{1}, []float64{1}, []float64{0}, []float64{1})
	events.Publish(ContactEvents(states, 0.5))

	assert.Len(t, engaged1.events, 2)
	assert.Len(t, engaged2.events, 2)
	assert.Len(t, released.events, 1)
	assert.Equal(t, 2, released.events[0].Step)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "engage", CONTACT_ENGAGE.String())
	assert.Equal(t, "hold", CONTACT_HOLD.String())
	assert.Equal(t, "release", CONTACT_RELEASE.String())
	assert.Equal(t, "EventType(9)", EventType(9).String())
}
