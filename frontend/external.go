package frontend

import (
	"github.com/sarchlab/dramsim/dram"
	"github.com/sarchlab/dramsim/request"
	"github.com/sarchlab/dramsim/sim"
)

// External is a minimal programmatic front-end: it generates no requests of
// its own, instead forwarding whatever ReceiveExternalRequest is called
// with directly into a controller, bypassing the port/connection machinery
// entirely. Grounded on IFrontEnd::receive_external_requests, the bridge a
// full-system simulator (or a test) uses instead of a trace file.
type External struct {
	*sim.TickingComponent

	ctrl     *dram.Comp
	numCores int
	finished bool
}

// NewExternal builds an External front-end bound directly to ctrl.
func NewExternal(name string, engine sim.Engine, freq sim.Freq, ctrl *dram.Comp, numCores int) *External {
	if numCores == 0 {
		numCores = 1
	}

	e := &External{ctrl: ctrl, numCores: numCores}
	e.TickingComponent = sim.NewTickingComponent(name, engine, freq, e)

	return e
}

// Tick never does anything on its own: every request this front-end issues
// arrives through ReceiveExternalRequest, not the tick schedule.
func (e *External) Tick() bool { return false }

// ReceiveExternalRequest builds a request from typeID/addr/sourceID, wires
// callback as its completion hook, and forwards it straight to the bound
// controller, returning whether the controller had room for it.
func (e *External) ReceiveExternalRequest(
	typeID request.Type,
	addr int64,
	sourceID int,
	callback func(*request.Request),
) bool {
	req := request.New(addr, typeID)
	req.SourceID = sourceID
	req.Callback = callback

	return e.ctrl.Send(req)
}

// SetFinished lets the embedding simulator (or a test) declare this
// front-end done, since External has no trace length of its own to track
// completion against.
func (e *External) SetFinished(v bool) { e.finished = v }

// IsFinished reports the finished flag SetFinished last set.
func (e *External) IsFinished() bool { return e.finished }

// Finalize reports no counters of its own: External keeps none, since
// every request it forwards is already counted by the controller it
// drives.
func (e *External) Finalize() map[string]interface{} { return map[string]interface{}{} }

// NumCores reports the source count this front-end was built with.
func (e *External) NumCores() int { return e.numCores }
