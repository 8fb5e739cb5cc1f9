// Package dramnode implements the recursive node tree that backs a DRAM
// device: one node per level of the organization (channel, rank, bank
// group, bank, ...), each holding the per-command ready-clock vector and
// issuance history that the timing model consults. The tree shape and its
// algorithms are generic; everything device-specific is looked up through a
// devicespec.Spec.
package dramnode

import "github.com/sarchlab/dramsim/devicespec"

// Node is one node of the tree. A Node never imports its children's types
// directly; the tree is built and walked purely through Spec lookups and
// the AddrVec slot at this node's level.
type Node struct {
	spec   *devicespec.Spec
	level  int
	nodeID int

	parent   *Node
	children []*Node

	state int

	// cmdReadyClk[cmd] is the earliest clock at which cmd may next be
	// issued at this node, or -1 if unconstrained.
	cmdReadyClk []int64

	// cmdHistory[cmd] holds past issuance clocks of cmd at this node, most
	// recent first, sized to the widest timing window any constraint on
	// cmd declares. A command nobody ever measures a window against has a
	// zero-length (and therefore never-allocated) history.
	cmdHistory [][]int64

	rowOpenValid bool
	rowOpenID    int
}

// New builds the node at (level, nodeID) and recurses down to and including
// spec.RowLevel, the deepest level the tree actually materializes.
func New(spec *devicespec.Spec, level, nodeID int, parent *Node) *Node {
	n := &Node{
		spec:   spec,
		level:  level,
		nodeID: nodeID,
		parent: parent,
	}

	if level < len(spec.InitState) {
		n.state = spec.InitState[level]
	}

	n.cmdReadyClk = make([]int64, len(spec.Commands))
	n.cmdHistory = make([][]int64, len(spec.Commands))
	for cmd := range spec.Commands {
		n.cmdReadyClk[cmd] = -1

		window := widestWindow(spec, level, cmd)
		if window > 0 {
			hist := make([]int64, window)
			for i := range hist {
				hist[i] = -1
			}
			n.cmdHistory[cmd] = hist
		}
	}

	if level < spec.RowLevel && level+1 < len(spec.LevelSize) {
		n.children = make([]*Node, spec.LevelSize[level+1])
		for i := range n.children {
			n.children[i] = New(spec, level+1, i, n)
		}
	}

	return n
}

// widestWindow finds the largest non-sibling Window any timing constraint
// attached to (level, cmd) measures from, which is how much history this
// node must retain for cmd.
func widestWindow(spec *devicespec.Spec, level, cmd int) int {
	widest := 0
	for _, t := range spec.TimingCons(level, cmd) {
		if t.Sibling {
			continue
		}
		if t.Window > widest {
			widest = t.Window
		}
	}

	return widest
}

// Level implements devicespec.NodeView.
func (n *Node) Level() int { return n.level }

// NodeID implements devicespec.NodeView.
func (n *Node) NodeID() int { return n.nodeID }

// State implements devicespec.NodeView.
func (n *Node) State() int { return n.state }

// SetState implements devicespec.NodeView.
func (n *Node) SetState(s int) { n.state = s }

// RowState implements devicespec.NodeView.
func (n *Node) RowState() (int, bool) { return n.rowOpenID, n.rowOpenValid }

// SetRowState implements devicespec.NodeView.
func (n *Node) SetRowState(row int) {
	n.rowOpenID = row
	n.rowOpenValid = true
}

// ClearRowState implements devicespec.NodeView.
func (n *Node) ClearRowState() {
	n.rowOpenID = 0
	n.rowOpenValid = false
}

// Child returns the nodeID'th child, or nil if id is out of range or this
// node has no children.
func (n *Node) Child(id int) *Node {
	if id < 0 || id >= len(n.children) {
		return nil
	}

	return n.children[id]
}

// Children returns every child of this node.
func (n *Node) Children() []*Node { return n.children }

// UpdateStates applies cmd's action at this node (if the spec defines one
// for this level), then recurses into children per the address vector,
// stopping once the command's declared scope level is reached.
func (n *Node) UpdateStates(cmd int, addrVec []int, clk int64) {
	if act := n.spec.Action(n.level, cmd); act != nil {
		childID := -1
		if n.level+1 < len(addrVec) {
			childID = addrVec[n.level+1]
		}
		act(n, cmd, childID, clk)
	}

	if n.atOrBelowScope(cmd) || len(n.children) == 0 {
		return
	}

	childID := -1
	if n.level+1 < len(addrVec) {
		childID = addrVec[n.level+1]
	}

	if childID == -1 {
		for _, c := range n.children {
			c.UpdateStates(cmd, addrVec, clk)
		}

		return
	}

	if c := n.Child(childID); c != nil {
		c.UpdateStates(cmd, addrVec, clk)
	}
}

// UpdatePowers mirrors UpdateStates for the power model, and is a no-op
// entirely when the spec has power modeling disabled.
func (n *Node) UpdatePowers(cmd int, addrVec []int, clk int64) {
	if !n.spec.PowerEnabled {
		return
	}

	if pw := n.spec.Power(n.level, cmd); pw != nil {
		pw(n, cmd, addrVec, clk)
	}

	if n.atOrBelowScope(cmd) || len(n.children) == 0 {
		return
	}

	childID := -1
	if n.level+1 < len(addrVec) {
		childID = addrVec[n.level+1]
	}

	if childID == -1 {
		for _, c := range n.children {
			c.UpdatePowers(cmd, addrVec, clk)
		}

		return
	}

	if c := n.Child(childID); c != nil {
		c.UpdatePowers(cmd, addrVec, clk)
	}
}

// UpdateTiming propagates the effect of issuing cmd at clk through the
// ready-clock vectors of this node and, unconditionally, all its children.
//
// A node that is a sibling of the addressed node at its own level (its
// nodeID differs from the corresponding addrVec slot, and that slot is not
// a broadcast) only absorbs Sibling-flagged constraints keyed off this same
// clk, and does not recurse further: sibling timing effects never cascade
// past the level they were declared at.
func (n *Node) UpdateTiming(cmd int, addrVec []int, clk int64) {
	if n.level < len(addrVec) && addrVec[n.level] != -1 && addrVec[n.level] != n.nodeID {
		for _, t := range n.spec.TimingCons(n.level, cmd) {
			if !t.Sibling {
				continue
			}
			future := clk + t.Val
			if n.cmdReadyClk[t.ReadyCmd] < future {
				n.cmdReadyClk[t.ReadyCmd] = future
			}
		}

		return
	}

	if hist := n.cmdHistory[cmd]; len(hist) > 0 {
		copy(hist[1:], hist[:len(hist)-1])
		hist[0] = clk
	}

	for _, t := range n.spec.TimingCons(n.level, cmd) {
		if t.Sibling {
			continue
		}

		hist := n.cmdHistory[cmd]
		if t.Window < 1 || t.Window > len(hist) {
			continue
		}

		past := hist[t.Window-1]
		if past < 0 {
			continue
		}

		future := past + t.Val
		if n.cmdReadyClk[t.ReadyCmd] < future {
			n.cmdReadyClk[t.ReadyCmd] = future
		}
	}

	for _, c := range n.children {
		c.UpdateTiming(cmd, addrVec, clk)
	}
}

// GetPreqCommand walks down from this node along addrVec and returns the
// first prerequisite a level's spec function reports (the shallowest one);
// if no level intervenes, cmd itself is returned unchanged.
func (n *Node) GetPreqCommand(cmd int, addrVec []int, clk int64) int {
	if pf := n.spec.Preq(n.level, cmd); pf != nil {
		if p := pf(n, cmd, addrVec, clk); p != devicespec.NoPrereq {
			return p
		}
	}

	if len(n.children) == 0 {
		return cmd
	}

	childID := -1
	if n.level+1 < len(addrVec) {
		childID = addrVec[n.level+1]
	}

	if c := n.Child(childID); c != nil {
		return c.GetPreqCommand(cmd, addrVec, clk)
	}

	return cmd
}

// CheckReady reports whether cmd may be issued at clk, recursing into every
// addressed child (all of them, on a broadcast slot) and requiring each to
// agree.
func (n *Node) CheckReady(cmd int, addrVec []int, clk int64) bool {
	if rc := n.cmdReadyClk[cmd]; rc != -1 && clk < rc {
		return false
	}

	if n.atOrBelowScope(cmd) || len(n.children) == 0 {
		return true
	}

	childID := -1
	if n.level+1 < len(addrVec) {
		childID = addrVec[n.level+1]
	}

	if childID == -1 {
		for _, c := range n.children {
			if !c.CheckReady(cmd, addrVec, clk) {
				return false
			}
		}

		return true
	}

	if c := n.Child(childID); c != nil {
		return c.CheckReady(cmd, addrVec, clk)
	}

	return true
}

// CheckRowBufferHit walks down until a level claims an opinion on cmd's row
// buffer effect, and returns it; false if nothing ever claims one.
func (n *Node) CheckRowBufferHit(cmd int, addrVec []int, clk int64) bool {
	if rh := n.spec.RowHit(n.level, cmd); rh != nil {
		targetID := -1
		if n.level+1 < len(addrVec) {
			targetID = addrVec[n.level+1]
		}

		return rh(n, cmd, targetID, clk)
	}

	if len(n.children) == 0 {
		return false
	}

	childID := -1
	if n.level+1 < len(addrVec) {
		childID = addrVec[n.level+1]
	}

	if c := n.Child(childID); c != nil {
		return c.CheckRowBufferHit(cmd, addrVec, clk)
	}

	return false
}

// CheckNodeOpen mirrors CheckRowBufferHit for "is any row open at all".
func (n *Node) CheckNodeOpen(cmd int, addrVec []int, clk int64) bool {
	if ro := n.spec.RowOpen(n.level, cmd); ro != nil {
		targetID := -1
		if n.level+1 < len(addrVec) {
			targetID = addrVec[n.level+1]
		}

		return ro(n, cmd, targetID, clk)
	}

	if len(n.children) == 0 {
		return false
	}

	childID := -1
	if n.level+1 < len(addrVec) {
		childID = addrVec[n.level+1]
	}

	if c := n.Child(childID); c != nil {
		return c.CheckNodeOpen(cmd, addrVec, clk)
	}

	return false
}

func (n *Node) atOrBelowScope(cmd int) bool {
	if n.level >= len(n.spec.CommandScope) {
		return true
	}

	return n.level >= n.spec.CommandScope[cmd]
}
