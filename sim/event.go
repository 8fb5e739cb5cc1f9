package sim

// VTimeInSec is simulated time, in seconds: the controller's own cycle
// clock measured against a DDR device's nanosecond-scale timing
// parameters (t_RCD, t_RAS, ...), not wall-clock time.
type VTimeInSec float64

// An Event is something scheduled to happen at a future simulated time —
// a refresh deadline firing, a row-policy timeout expiring, a command
// becoming ready to issue.
type Event interface {
	// Time returns the simulated time at which the event should fire.
	Time() VTimeInSec

	// Handler returns the handler that owns and will process the event.
	Handler() Handler

	// IsSecondary reports whether the event is a secondary event. Secondary
	// events are handled after every same-time primary event, so a
	// controller's own tick always sees a cycle's command-issue decisions
	// before any deferred bookkeeping for that same cycle runs.
	IsSecondary() bool
}

// EventBase provides the basic fields and getters for other events.
type EventBase struct {
	ID        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase scheduled for time t against handler.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler
	e.secondary = false
	return e
}

// Time returns the simulated time at which the event is scheduled to fire.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// SetHandler sets which handler processes the event.
//
// A handler may only schedule events against itself — a controller ticking
// itself forward, not one controller reaching into another's queue. The
// only exception is the initial kick-start of the simulation, where the
// driver schedules the first event for every handler.
func (e *EventBase) SetHandler(h Handler) {
	e.handler = h
}

// Handler returns the handler that will process the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler owns and processes its own events — a controller handling its
// own tick event, a front-end handling its own next-send event.
//
// An event is always bound to exactly one Handler: it can only be scheduled
// by that handler, and processing it can only directly modify that
// handler's own state.
type Handler interface {
	Handle(e Event) error
}
