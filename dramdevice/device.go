// Package dramdevice wraps a devicespec.Spec and the dramnode tree it
// describes into the single object a controller issues commands against.
package dramdevice

import (
	"github.com/sarchlab/dramsim/devicespec"
	"github.com/sarchlab/dramsim/dramnode"
)

// Device is one DRAM channel: a spec plus the node tree rooted at its top
// organization level.
type Device struct {
	spec *devicespec.Spec
	root *dramnode.Node

	notifications map[string]interface{}
}

// New builds a device from spec, constructing the full node tree.
func New(spec *devicespec.Spec) *Device {
	return &Device{
		spec:          spec,
		root:          dramnode.New(spec, 0, 0, nil),
		notifications: make(map[string]interface{}),
	}
}

// Spec returns the static description this device was built from.
func (d *Device) Spec() *devicespec.Spec { return d.spec }

// IssueCommand atomically applies cmd at clk: it updates node state, then
// propagates the resulting timing effects, then (if power modeling is
// enabled) the power effects.
func (d *Device) IssueCommand(cmd int, addrVec []int, clk int64) {
	d.root.UpdateStates(cmd, addrVec, clk)
	d.root.UpdateTiming(cmd, addrVec, clk)
	d.root.UpdatePowers(cmd, addrVec, clk)
}

// GetPreqCommand returns the first prerequisite command the spec demands
// before cmd may be issued, walking down from the root, or cmd itself if
// nothing intervenes.
func (d *Device) GetPreqCommand(cmd int, addrVec []int, clk int64) int {
	return d.root.GetPreqCommand(cmd, addrVec, clk)
}

// CheckReady reports whether cmd may be issued at clk.
func (d *Device) CheckReady(cmd int, addrVec []int, clk int64) bool {
	return d.root.CheckReady(cmd, addrVec, clk)
}

// CheckRowBufferHit reports whether cmd would hit an already-open row.
func (d *Device) CheckRowBufferHit(cmd int, addrVec []int, clk int64) bool {
	return d.root.CheckRowBufferHit(cmd, addrVec, clk)
}

// CheckNodeOpen reports whether any row is open at the address cmd targets.
func (d *Device) CheckNodeOpen(cmd int, addrVec []int, clk int64) bool {
	return d.root.CheckNodeOpen(cmd, addrVec, clk)
}

// GetLevelSize returns the configured child count at level, so collaborators
// (address mappers, plugins) can size their own per-level bookkeeping.
func (d *Device) GetLevelSize(level int) int {
	if level < 0 || level >= len(d.spec.LevelSize) {
		return 0
	}

	return d.spec.LevelSize[level]
}

// Notify is a side channel for runtime reconfiguration, such as a refresh
// manager switching modes.
func (d *Device) Notify(key string, value interface{}) {
	d.notifications[key] = value
}

// Notification returns the last value set for key via Notify, and whether
// one was ever set.
func (d *Device) Notification(key string) (interface{}, bool) {
	v, ok := d.notifications[key]

	return v, ok
}
