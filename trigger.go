package cio

import "fmt"

const (
	CONTACT_ENGAGE EventType = iota
	CONTACT_HOLD
	CONTACT_RELEASE
)

type EventType uint8

func (t EventType) String() string {
	switch t {
	case CONTACT_ENGAGE:
		return "engage"
	case CONTACT_HOLD:
		return "hold"
	case CONTACT_RELEASE:
		return "release"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// ContactEvent reports a change, or the persistence, of the engagement of a
// contact at a step of a trajectory
type ContactEvent struct {
	Type       EventType
	Step       int
	Contact    int
	Activation float64
}

// ContactEvents compares the activation of every contact to threshold, step
// after step. A contact is engaged when its activation reaches threshold; no
// contact is engaged before the first step.
func ContactEvents(states []WorldState, threshold float64) []ContactEvent {
	var events []ContactEvent
	var previous []bool

	for _, state := range states {
		current := make([]bool, len(state.Contacts))
		for j, contact := range state.Contacts {
			current[j] = contact.Activation >= threshold
			wasEngaged := previous != nil && previous[j]

			event := ContactEvent{Step: state.Step, Contact: j, Activation: contact.Activation}
			switch {
			case current[j] && wasEngaged:
				event.Type = CONTACT_HOLD
			case current[j]:
				event.Type = CONTACT_ENGAGE
			case wasEngaged:
				event.Type = CONTACT_RELEASE
			default:
				continue
			}
			events = append(events, event)
		}
		previous = current
	}

	return events
}

// EventListener - callback for events
type EventListener func(event ContactEvent)

// Events dispatches contact events to their listeners
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// Publish sends the events, in order, to the listeners of their type
func (e *Events) Publish(events []ContactEvent) {
	for _, event := range events {
		for _, listener := range e.listeners[event.Type] {
			listener(event)
		}
	}
}
