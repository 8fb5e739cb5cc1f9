// Package frontend implements the request generators that drive a DRAM
// simulation: trace file players and a minimal programmatic bridge for
// embedding a controller without a trace file.
package frontend

import "github.com/sarchlab/dramsim/sim"

// FrontEnd is implemented by every component that generates memory requests
// for a controller to service. A simulation run ticks every front-end
// alongside its controllers until every front-end reports IsFinished.
type FrontEnd interface {
	sim.Component

	// IsFinished reports whether this front-end has no more work to submit.
	// The owning simulation drains each controller's pending reads and
	// calls Finalize once every front-end it drives reports true.
	IsFinished() bool

	// Finalize reports this front-end's own counters, if it keeps any.
	Finalize() map[string]interface{}

	// NumCores reports how many distinct request sources this front-end
	// multiplexes, for per-core statistics.
	NumCores() int
}

// ioPort is the small plumbing every concrete front-end shares: one port
// sending ReqMsgs to a controller's TopPort, with the send-then-maybe-retry
// discipline the reference implementation's own trace players use around
// m_memory_system->send (advance only once the send actually lands).
type ioPort struct {
	own sim.Port
	mem sim.RemotePort
}

func newIOPort(comp sim.Component, name string, mem sim.RemotePort) ioPort {
	return ioPort{
		own: sim.NewPort(comp, 4, 4, name+".Top"),
		mem: mem,
	}
}
