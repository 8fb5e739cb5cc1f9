// Package devicespec describes the static shape of a DRAM organization: its
// level hierarchy, its command set, and the per-(level,command) callback
// tables that give those commands meaning. A concrete device family (see
// package ddr4) builds one Spec value; package dramnode walks it.
package devicespec

import "github.com/sarchlab/dramsim/request"

// NoPrereq is the sentinel a PreqFunc returns when it has no opinion and the
// walk should keep using the command unchanged.
const NoPrereq = -1

// ActionFunc mutates node state when cmd is issued at targetID, one of
// node's children (or -1 when the command broadcasts to every child at
// node's level).
type ActionFunc func(node NodeView, cmd, targetID int, clk int64)

// PreqFunc returns the prerequisite command that must run before cmd can be
// issued at this node, or NoPrereq if this level imposes none.
type PreqFunc func(node NodeView, cmd int, addrVec []int, clk int64) int

// RowHitFunc reports whether cmd, if issued now, would hit an already-open
// row buffer.
type RowHitFunc func(node NodeView, cmd, targetID int, clk int64) bool

// RowOpenFunc reports whether the addressed row is currently open at all.
type RowOpenFunc func(node NodeView, cmd, targetID int, clk int64) bool

// PowerFunc records power-model events for cmd. Only invoked when a Spec's
// PowerEnabled is true.
type PowerFunc func(node NodeView, cmd int, addrVec []int, clk int64)

// NodeView is the slice of *dramnode.Node state a callback is allowed to
// touch, expressed as an interface so devicespec does not import dramnode
// (which must import devicespec to use these callback tables).
type NodeView interface {
	Level() int
	NodeID() int
	State() int
	SetState(int)
	// RowState reports the row currently open in this node's row buffer, if
	// any. Only meaningful for nodes at a Spec's RowLevel.
	RowState() (row int, open bool)
	SetRowState(row int)
	ClearRowState()
}

// TimingConstraint is one entry of a (level, command) timing row: issuing
// Cmd at this node schedules another command, ReadyCmd, to become ready no
// earlier than a fixed offset from either a past issuance of Cmd at this
// node (Sibling == false) or the current issuance at a sibling node
// (Sibling == true).
type TimingConstraint struct {
	ReadyCmd int
	// Window selects which past issuance of Cmd to measure from: 1 is the
	// most recent, 2 the one before that, and so on. Only meaningful when
	// Sibling is false.
	Window int
	// Val is the cycle offset added to the reference clock.
	Val int64
	// Sibling constraints fire off the clock of the issuance currently in
	// flight at a sibling node, rather than a past issuance at this node,
	// and do not gate further recursion into this node's children.
	Sibling bool
}

// CommandMeta carries per-command flags the controller and plugins need
// without walking the node tree.
type CommandMeta struct {
	Name       string
	IsOpening  bool
	IsClosing  bool
	IsRefresh  bool
	IsAccess   bool // RD/WR family: the command a scheduler ultimately wants ready
}

// Spec is the complete static description of a DRAM organization.
type Spec struct {
	Name string

	// Levels lists level names from the root (index 0, typically "channel")
	// down to the deepest node level (RowLevel, e.g. "bank"); the row is the
	// address slot after it, not a level of its own. LevelSize[i] is the
	// number of level-i nodes under each level-(i-1) parent, so a node at
	// level i has LevelSize[i+1] children.
	Levels    []string
	LevelSize []int

	// Commands lists every command name; its index is the command id used
	// everywhere else in this package and in dramnode/dramdevice.
	Commands []string
	Meta     []CommandMeta

	// CommandScope[cmd] is the level at which cmd ultimately acts: the
	// recursion in UpdateStates/CheckReady stops fanning out once it
	// reaches a node at this level.
	CommandScope []int

	// InitState[level] is the state every newly constructed node at that
	// level starts in.
	InitState []int

	// RowLevel is the level whose nodes carry open-row state (that is, the
	// level one above the elided leaf "row"/"column" levels — typically
	// "bank"). Only nodes at this level ever call SetRowState/RowState.
	RowLevel int

	// Actions, Preqs, RowHits, RowOpens and Powers are all indexed
	// [level][cmd]; a nil entry means "this level has nothing to say about
	// this command".
	Actions  [][]ActionFunc
	Preqs    [][]PreqFunc
	RowHits  [][]RowHitFunc
	RowOpens [][]RowOpenFunc
	Powers   [][]PowerFunc

	// TimingTable[level][cmd] lists the timing constraints issuing cmd at a
	// node of that level imposes.
	TimingTable [][][]TimingConstraint

	// PowerEnabled gates whether UpdatePowers does anything at all.
	PowerEnabled bool

	// RequestTypeCommand maps a request.Type to the command that begins
	// servicing it (RD for reads, WR for writes and partial writes, ...).
	RequestTypeCommand map[request.Type]int

	// ReadLatency is the fixed number of cycles from a read's final column
	// command to its data return, used by the controller to compute depart.
	ReadLatency int64

	// CloseCommand is the command a row policy's close annotation resolves
	// to: the generic single-bank precharge.
	CloseCommand int
}

// Level returns the level id for a level name, or -1 if unknown.
func (s *Spec) Level(name string) int {
	for i, n := range s.Levels {
		if n == name {
			return i
		}
	}

	return -1
}

// Command returns the command id for a command name, or -1 if unknown.
func (s *Spec) Command(name string) int {
	for i, n := range s.Commands {
		if n == name {
			return i
		}
	}

	return -1
}

// Action returns the action callback for (level, cmd), or nil.
func (s *Spec) Action(level, cmd int) ActionFunc {
	if level < 0 || level >= len(s.Actions) {
		return nil
	}
	row := s.Actions[level]
	if cmd < 0 || cmd >= len(row) {
		return nil
	}

	return row[cmd]
}

// Preq returns the prerequisite-command callback for (level, cmd), or nil.
func (s *Spec) Preq(level, cmd int) PreqFunc {
	if level < 0 || level >= len(s.Preqs) {
		return nil
	}
	row := s.Preqs[level]
	if cmd < 0 || cmd >= len(row) {
		return nil
	}

	return row[cmd]
}

// RowHit returns the row-buffer-hit callback for (level, cmd), or nil.
func (s *Spec) RowHit(level, cmd int) RowHitFunc {
	if level < 0 || level >= len(s.RowHits) {
		return nil
	}
	row := s.RowHits[level]
	if cmd < 0 || cmd >= len(row) {
		return nil
	}

	return row[cmd]
}

// RowOpen returns the row-open callback for (level, cmd), or nil.
func (s *Spec) RowOpen(level, cmd int) RowOpenFunc {
	if level < 0 || level >= len(s.RowOpens) {
		return nil
	}
	row := s.RowOpens[level]
	if cmd < 0 || cmd >= len(row) {
		return nil
	}

	return row[cmd]
}

// Power returns the power-model callback for (level, cmd), or nil.
func (s *Spec) Power(level, cmd int) PowerFunc {
	if level < 0 || level >= len(s.Powers) {
		return nil
	}
	row := s.Powers[level]
	if cmd < 0 || cmd >= len(row) {
		return nil
	}

	return row[cmd]
}

// DecodeAddr maps a flat intra-channel address to an address vector: a
// mixed-radix decode across the organization levels (bank is the least
// significant, channel is fixed at 0 since a device is always one channel),
// with whatever remains above the product of every level's size becoming
// the row id stored one slot past RowLevel. This is the address mapping a
// controller applies before it can schedule against a request that only
// carries a flat Addr.
func (s *Spec) DecodeAddr(addr int64) []int {
	vec := make([]int, len(s.LevelSize)+1)

	rem := addr
	for level := len(s.LevelSize) - 1; level >= 1; level-- {
		size := int64(s.LevelSize[level])
		if size <= 0 {
			continue
		}

		vec[level] = int(rem % size)
		rem /= size
	}

	vec[len(s.LevelSize)] = int(rem)

	return vec
}

// TimingCons returns the timing constraints (level, cmd) imposes.
func (s *Spec) TimingCons(level, cmd int) []TimingConstraint {
	if level < 0 || level >= len(s.TimingTable) {
		return nil
	}
	row := s.TimingTable[level]
	if cmd < 0 || cmd >= len(row) {
		return nil
	}

	return row[cmd]
}
