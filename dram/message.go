package dram

import (
	"reflect"

	"github.com/sarchlab/dramsim/request"
	"github.com/sarchlab/dramsim/sim"
)

// ReqMsg carries one memory access across the port boundary between a
// front-end and a controller. Completion is not signalled by a response
// message: the controller invokes Req.Callback directly once the access is
// served, the same contract request.Request documents for any caller.
type ReqMsg struct {
	sim.MsgMeta

	Req *request.Request
}

// Meta implements sim.Msg.
func (m *ReqMsg) Meta() *sim.MsgMeta { return &m.MsgMeta }

// Clone implements sim.Msg.
func (m *ReqMsg) Clone() sim.Msg {
	cloned := *m
	cloned.ID = sim.GetIDGenerator().Generate()

	return &cloned
}

// ReqMsgBuilder builds ReqMsg values fluently, in the same style as the
// ambient engine's own GeneralRspBuilder.
type ReqMsgBuilder struct {
	Src, Dst sim.RemotePort
	Req      *request.Request
}

// WithSrc sets the message's source port.
func (b ReqMsgBuilder) WithSrc(src sim.RemotePort) ReqMsgBuilder {
	b.Src = src
	return b
}

// WithDst sets the message's destination port.
func (b ReqMsgBuilder) WithDst(dst sim.RemotePort) ReqMsgBuilder {
	b.Dst = dst
	return b
}

// WithRequest sets the request being carried.
func (b ReqMsgBuilder) WithRequest(req *request.Request) ReqMsgBuilder {
	b.Req = req
	return b
}

// Build creates the ReqMsg.
func (b ReqMsgBuilder) Build() *ReqMsg {
	return &ReqMsg{
		MsgMeta: sim.MsgMeta{
			Src:          b.Src,
			Dst:          b.Dst,
			TrafficClass: reflect.TypeOf(ReqMsg{}).String(),
			ID:           sim.GetIDGenerator().Generate(),
		},
		Req: b.Req,
	}
}
