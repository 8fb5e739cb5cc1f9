package frontend

import (
	"github.com/sarchlab/dramsim/config"
	"github.com/sarchlab/dramsim/request"
	"github.com/sarchlab/dramsim/sim"
)

// ReadWriteTrace replays an address-vector Read/Write trace file, cycling
// back to its first line once every line has been sent at least once.
// Grounded on ReadWriteTrace::tick/init_trace.
type ReadWriteTrace struct {
	*sim.TickingComponent

	io ioPort

	entries    []readWriteEntry
	idx        int
	clockRatio int
	sent       uint64
}

// NewReadWriteTrace builds a ReadWriteTrace, reading its "path" and
// "clock_ratio" parameters from reg.
func NewReadWriteTrace(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	memPort sim.RemotePort,
	reg *config.Registry,
) (*ReadWriteTrace, error) {
	path, err := reg.Param("path").
		Desc("Path to the read/write DRAM address vector trace file.").
		Required().String()
	if err != nil {
		return nil, err
	}

	clockRatio, err := reg.Param("clock_ratio").
		Desc("Ratio between this front-end's clock and the channel it drives.").
		Default(1).Int()
	if err != nil {
		return nil, err
	}

	entries, err := parseReadWriteTrace(path)
	if err != nil {
		return nil, err
	}

	t := &ReadWriteTrace{entries: entries, clockRatio: clockRatio}
	t.TickingComponent = sim.NewTickingComponent(name, engine, freq, t)
	t.io = newIOPort(t, name, memPort)
	t.AddPort("Top", t.io.own)

	return t, nil
}

// Tick sends the current trace entry if the controller's port has room,
// advancing to the next line only once the send actually lands.
func (t *ReadWriteTrace) Tick() bool {
	if len(t.entries) == 0 {
		return false
	}

	e := t.entries[t.idx]

	typeID := request.TypeRead
	if e.isWrite {
		typeID = request.TypeWrite
	}

	req := request.NewFromAddrVec(e.addrVec, typeID)

	if !t.io.trySend(req) {
		return false
	}

	t.idx = (t.idx + 1) % len(t.entries)
	t.sent++

	return true
}

// IsFinished reports whether every line of the trace has been sent at
// least once.
func (t *ReadWriteTrace) IsFinished() bool {
	return t.sent >= uint64(len(t.entries))
}

// Finalize reports how many requests this player actually sent.
func (t *ReadWriteTrace) Finalize() map[string]interface{} {
	return map[string]interface{}{"requests_sent": t.sent}
}

// NumCores reports 1: a Read/Write trace carries no source id of its own.
func (t *ReadWriteTrace) NumCores() int { return 1 }
