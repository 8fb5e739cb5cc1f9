package frontend

import (
	"github.com/sarchlab/dramsim/dram"
	"github.com/sarchlab/dramsim/request"
)

// trySend attempts to deliver req to the controller this port targets,
// returning false (without mutating req) if the port's outgoing buffer has
// no room, so the caller can retry the same request next tick instead of
// silently dropping it.
func (p ioPort) trySend(req *request.Request) bool {
	if !p.own.CanSend() {
		return false
	}

	msg := dram.ReqMsgBuilder{}.
		WithSrc(p.own.AsRemote()).
		WithDst(p.mem).
		WithRequest(req).
		Build()

	return p.own.Send(msg) == nil
}
