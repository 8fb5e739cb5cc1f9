// Package plugin implements the controller's per-tick plugin pipeline,
// principally the ECC/EDC plugin that models end-to-end error detection and
// correction on every write and read.
package plugin

import "github.com/sarchlab/dramsim/request"

// StatsRecorder is the narrow counter-increment interface a plugin uses to
// report an outcome at finalize time, satisfied directly by *dram.Stats
// without the two packages needing to import one another. A nil
// StatsRecorder is valid: a plugin must treat it as "don't record".
type StatsRecorder interface {
	Add(name string, delta uint64)
}

// Plugin is invoked once per controller tick, after a candidate request has
// been chosen (or none was) but before it is issued. A plugin may read and
// mutate the candidate's payload and scratchpad; it must never touch buffer
// membership. stats is where a plugin reports a named outcome counter, e.g.
// an uncorrectable ECC error.
type Plugin interface {
	Update(found bool, req *request.Request, clk int64, stats StatsRecorder)
}

// Pipeline runs a fixed ordered list of plugins each tick.
type Pipeline struct {
	Plugins []Plugin
}

// Update runs every plugin in order.
func (p *Pipeline) Update(found bool, req *request.Request, clk int64, stats StatsRecorder) {
	for _, plug := range p.Plugins {
		plug.Update(found, req, clk, stats)
	}
}
