// Package scheduler implements the FRFCFS family of request pickers a
// controller consults when choosing which buffered request to issue next.
package scheduler

import (
	"github.com/sarchlab/dramsim/dramdevice"
	"github.com/sarchlab/dramsim/request"
)

// Scheduler picks the preferred request out of buf, refreshing each
// candidate's Command field against the device's prerequisite table before
// comparing. It returns nil if buf is empty.
type Scheduler interface {
	GetBestRequest(buf *request.Buffer, dev *dramdevice.Device, clk int64) *request.Request
}

// FRFCFS is first-ready, first-come-first-served: a request whose current
// command is ready beats one that is not, and among equally-ready
// candidates the earliest arrival wins.
type FRFCFS struct{}

// NewFRFCFS constructs a stateless first-ready-first-come scheduler.
func NewFRFCFS() *FRFCFS { return &FRFCFS{} }

// GetBestRequest implements Scheduler.
func (s *FRFCFS) GetBestRequest(buf *request.Buffer, dev *dramdevice.Device, clk int64) *request.Request {
	var best *request.Request

	for _, req := range buf.All() {
		req.Command = dev.GetPreqCommand(req.FinalCommand, req.AddrVec, clk)

		if best == nil || frfcfsBetter(dev, clk, req, best) {
			best = req
		}
	}

	return best
}

func frfcfsBetter(dev *dramdevice.Device, clk int64, a, b *request.Request) bool {
	aReady := dev.CheckReady(a.Command, a.AddrVec, clk)
	bReady := dev.CheckReady(b.Command, b.AddrVec, clk)

	if aReady != bReady {
		return aReady
	}

	return a.Arrive < b.Arrive
}
