package flatface

import "github.com/akmonengine/flatface/mesh"

const (
	ON_APPLIED EventType = iota
	ON_DEGENERATE
	ON_MALFORMED
	ON_ITERATION
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Polygon events, one per polygon per pass
type AppliedEvent struct {
	Polygon   *mesh.Polygon
	Iteration int
}

func (e AppliedEvent) Type() EventType { return ON_APPLIED }

type DegenerateEvent struct {
	Polygon   *mesh.Polygon
	Iteration int
}

func (e DegenerateEvent) Type() EventType { return ON_DEGENERATE }

type MalformedEvent struct {
	Polygon   *mesh.Polygon
	Iteration int
}

func (e MalformedEvent) Type() EventType { return ON_MALFORMED }

// IterationEvent is sent once a pass over the whole selection is done
type IterationEvent struct {
	Iteration int
	Polygons  int
}

func (e IterationEvent) Type() EventType { return ON_ITERATION }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 256),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emitOutcome(p *mesh.Polygon, iteration int, outcome Outcome) {
	// nothing to buffer when no one listens
	if len(e.listeners) == 0 {
		return
	}

	switch outcome {
	case APPLIED:
		e.buffer = append(e.buffer, AppliedEvent{Polygon: p, Iteration: iteration})
	case SKIPPED_DEGENERATE:
		e.buffer = append(e.buffer, DegenerateEvent{Polygon: p, Iteration: iteration})
	case SKIPPED_MALFORMED:
		e.buffer = append(e.buffer, MalformedEvent{Polygon: p, Iteration: iteration})
	}
}

func (e *Events) emitIteration(iteration, polygons int) {
	if len(e.listeners) == 0 {
		return
	}
	e.buffer = append(e.buffer, IterationEvent{Iteration: iteration, Polygons: polygons})
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
