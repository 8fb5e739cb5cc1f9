// Package rowpolicy implements the open-page/closed-page/timeout family of
// policies a controller consults once per tick after a request has been
// selected. Every shipped policy is annotate-only: none of them synthesize
// new requests, they only mark the selected request's scratchpad so the
// controller's own tick loop knows whether to close the row it just
// accessed.
package rowpolicy

import "github.com/sarchlab/dramsim/request"

// Scratchpad slot assignments row policies use on request.Request.
const (
	// ScratchCloseAfterAccess is set non-zero when the row this request
	// just opened should be precharged immediately once its access
	// command issues.
	ScratchCloseAfterAccess = 0
	// ScratchCloseDeadline holds the clock cycle by which an open row
	// should be precharged if no further access has claimed it, or 0 if
	// no deadline applies.
	ScratchCloseDeadline = 1
)

// Policy is applied once per controller tick to whichever request (if any)
// was selected for issue this cycle.
type Policy interface {
	Apply(found bool, req *request.Request, clk int64)
}

// OpenPage never forces a close: rows stay open until evicted by a
// conflicting access. This is a no-op policy, kept as an explicit type so
// callers can select it the same way they select the other two.
type OpenPage struct{}

// Apply implements Policy.
func (OpenPage) Apply(found bool, req *request.Request, clk int64) {}

// ClosedPage marks every selected request's row for an immediate close
// once its access issues, approximating a precharge-on-access policy
// without the controller having to special-case it.
type ClosedPage struct{}

// Apply implements Policy.
func (ClosedPage) Apply(found bool, req *request.Request, clk int64) {
	if !found {
		return
	}

	req.Scratchpad[ScratchCloseAfterAccess] = 1
}

// Timeout leaves rows open for up to Cycles after they were last touched,
// annotating a deadline the controller re-checks every tick rather than
// closing immediately like ClosedPage or never like OpenPage.
type Timeout struct {
	Cycles int64
}

// Apply implements Policy.
func (p Timeout) Apply(found bool, req *request.Request, clk int64) {
	if !found {
		return
	}

	req.Scratchpad[ScratchCloseDeadline] = int(clk + p.Cycles)
}
