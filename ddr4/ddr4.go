// Package ddr4 builds a devicespec.Spec for a DDR4-style organization:
// channel -> rank -> bank group -> bank, with the usual
// activate/precharge/column/refresh command set and JEDEC-shaped timing
// constraints.
package ddr4

import (
	"github.com/sarchlab/dramsim/devicespec"
	"github.com/sarchlab/dramsim/request"
)

// Command ids. Index order is fixed and used throughout this package and by
// anything that names commands directly (the frontend trace players do
// not; they only ever deal in request.Type).
const (
	CmdACT = iota
	CmdPRE
	CmdPREA
	CmdRD
	CmdWR
	CmdREFab
	CmdREFsb
)

// Level ids.
const (
	LevelChannel = iota
	LevelRank
	LevelBankGroup
	LevelBank
)

// bankState values.
const (
	bankClosed = iota
	bankOpened
)

// Timing defaults, in cycles, loosely following a DDR4-2400 JEDEC profile.
// A concrete system can override any of these via Config before calling New.
const (
	DefaultTRCD   = 12 // activate -> column ready
	DefaultTRAS   = 28 // activate -> precharge
	DefaultTRP    = 12 // precharge -> activate
	DefaultTRC    = 40 // activate -> activate, same bank
	DefaultTRRD   = 6  // activate -> activate, sibling bank
	DefaultTWR    = 12 // write -> precharge (write recovery)
	DefaultTRTP   = 6  // read -> precharge
	DefaultTCCDS  = 4  // column -> column, short
	DefaultTWTR   = 6  // write -> read
	DefaultTRFC   = 160 // all-bank refresh -> activate
	DefaultTRFCsb = 90  // per-bank refresh -> activate
	DefaultReadLatency = 12
)

// Config parameterizes the organization counts and timing constants New
// builds a Spec from. Zero-valued timing fields fall back to the Default*
// constants above.
type Config struct {
	RanksPerChannel   int
	BankGroupsPerRank int
	BanksPerBankGroup int

	TRCD, TRAS, TRP, TRC, TRRD   int64
	TWR, TRTP, TCCDS, TWTR       int64
	TRFC, TRFCsb                int64
	ReadLatency                  int64

	// Power enables the power-model callback walk. When false (the
	// default), UpdatePowers never invokes these callbacks.
	Power bool
	Stats *PowerStats
}

// PowerStats accumulates per-command event counts for a device whose
// Config.Power is enabled. A single instance may be shared by several
// devices (e.g. channels of the same rank) if the caller wants aggregate
// totals.
type PowerStats struct {
	Activates uint64
	Precharges uint64
	Reads      uint64
	Writes     uint64
	Refreshes  uint64
}

func withDefault(v, def int64) int64 {
	if v == 0 {
		return def
	}

	return v
}

// New builds a DDR4-shaped Spec from cfg.
func New(cfg Config) *devicespec.Spec {
	if cfg.RanksPerChannel == 0 {
		cfg.RanksPerChannel = 1
	}
	if cfg.BankGroupsPerRank == 0 {
		cfg.BankGroupsPerRank = 4
	}
	if cfg.BanksPerBankGroup == 0 {
		cfg.BanksPerBankGroup = 4
	}

	tRCD := withDefault(cfg.TRCD, DefaultTRCD)
	tRAS := withDefault(cfg.TRAS, DefaultTRAS)
	tRP := withDefault(cfg.TRP, DefaultTRP)
	tRC := withDefault(cfg.TRC, DefaultTRC)
	tRRD := withDefault(cfg.TRRD, DefaultTRRD)
	tWR := withDefault(cfg.TWR, DefaultTWR)
	tRTP := withDefault(cfg.TRTP, DefaultTRTP)
	tCCDS := withDefault(cfg.TCCDS, DefaultTCCDS)
	tWTR := withDefault(cfg.TWTR, DefaultTWTR)
	tRFC := withDefault(cfg.TRFC, DefaultTRFC)
	tRFCsb := withDefault(cfg.TRFCsb, DefaultTRFCsb)
	readLatency := withDefault(cfg.ReadLatency, DefaultReadLatency)

	numCommands := CmdREFsb + 1

	spec := &devicespec.Spec{
		Name: "ddr4",
		Levels: []string{"channel", "rank", "bankgroup", "bank"},
		LevelSize: []int{
			1,
			cfg.RanksPerChannel,
			cfg.BankGroupsPerRank,
			cfg.BanksPerBankGroup,
		},
		Commands: []string{"ACT", "PRE", "PREA", "RD", "WR", "REFab", "REFsb"},
		CommandScope: []int{
			CmdACT:   LevelBank,
			CmdPRE:   LevelBank,
			CmdPREA:  LevelBank,
			CmdRD:    LevelBank,
			CmdWR:    LevelBank,
			CmdREFab: LevelBank,
			CmdREFsb: LevelBank,
		},
		InitState:    []int{LevelChannel: 0, LevelRank: 0, LevelBankGroup: 0, LevelBank: bankClosed},
		RowLevel:     LevelBank,
		PowerEnabled: cfg.Power,
		ReadLatency:  readLatency,
		CloseCommand: CmdPRE,
		RequestTypeCommand: map[request.Type]int{
			request.TypeRead:         CmdRD,
			request.TypeWrite:        CmdWR,
			request.TypePartialWrite: CmdWR,
		},
		Meta: []devicespec.CommandMeta{
			CmdACT:   {Name: "ACT", IsOpening: true},
			CmdPRE:   {Name: "PRE", IsClosing: true},
			CmdPREA:  {Name: "PREA", IsClosing: true},
			CmdRD:    {Name: "RD", IsAccess: true},
			CmdWR:    {Name: "WR", IsAccess: true},
			CmdREFab: {Name: "REFab", IsRefresh: true},
			CmdREFsb: {Name: "REFsb", IsRefresh: true},
		},
	}

	numLevels := len(spec.Levels)
	spec.Actions = make([][]devicespec.ActionFunc, numLevels)
	spec.Preqs = make([][]devicespec.PreqFunc, numLevels)
	spec.RowHits = make([][]devicespec.RowHitFunc, numLevels)
	spec.RowOpens = make([][]devicespec.RowOpenFunc, numLevels)
	spec.Powers = make([][]devicespec.PowerFunc, numLevels)
	spec.TimingTable = make([][][]devicespec.TimingConstraint, numLevels)
	for l := 0; l < numLevels; l++ {
		spec.Actions[l] = make([]devicespec.ActionFunc, numCommands)
		spec.Preqs[l] = make([]devicespec.PreqFunc, numCommands)
		spec.RowHits[l] = make([]devicespec.RowHitFunc, numCommands)
		spec.RowOpens[l] = make([]devicespec.RowOpenFunc, numCommands)
		spec.Powers[l] = make([]devicespec.PowerFunc, numCommands)
		spec.TimingTable[l] = make([][]devicespec.TimingConstraint, numCommands)
	}

	bank := LevelBank

	closeBank := func(node devicespec.NodeView, cmd, targetID int, clk int64) {
		node.SetState(bankClosed)
		node.ClearRowState()
	}

	spec.Actions[bank][CmdACT] = func(node devicespec.NodeView, cmd, targetID int, clk int64) {
		node.SetState(bankOpened)
		node.SetRowState(targetID)
	}
	spec.Actions[bank][CmdPRE] = closeBank
	spec.Actions[bank][CmdPREA] = closeBank

	rowConflictsWith := func(node devicespec.NodeView, addrVec []int) bool {
		row, open := node.RowState()
		if !open {
			return false
		}

		return row != addrVec[bank+1]
	}

	spec.Preqs[bank][CmdACT] = func(node devicespec.NodeView, cmd int, addrVec []int, clk int64) int {
		if rowConflictsWith(node, addrVec) {
			return CmdPRE
		}

		return devicespec.NoPrereq
	}
	accessPreq := func(node devicespec.NodeView, cmd int, addrVec []int, clk int64) int {
		row, open := node.RowState()
		if !open || row != addrVec[bank+1] {
			return CmdACT
		}

		return devicespec.NoPrereq
	}
	spec.Preqs[bank][CmdRD] = accessPreq
	spec.Preqs[bank][CmdWR] = accessPreq

	rowHit := func(node devicespec.NodeView, cmd, targetID int, clk int64) bool {
		row, open := node.RowState()

		return open && row == targetID
	}
	rowOpen := func(node devicespec.NodeView, cmd, targetID int, clk int64) bool {
		_, open := node.RowState()

		return open
	}
	spec.RowHits[bank][CmdRD] = rowHit
	spec.RowHits[bank][CmdWR] = rowHit
	spec.RowOpens[bank][CmdRD] = rowOpen
	spec.RowOpens[bank][CmdWR] = rowOpen

	spec.TimingTable[bank][CmdACT] = []devicespec.TimingConstraint{
		{ReadyCmd: CmdRD, Window: 1, Val: tRCD},
		{ReadyCmd: CmdWR, Window: 1, Val: tRCD},
		{ReadyCmd: CmdPRE, Window: 1, Val: tRAS},
		{ReadyCmd: CmdPREA, Window: 1, Val: tRAS},
		{ReadyCmd: CmdACT, Window: 1, Val: tRC},
		{ReadyCmd: CmdACT, Val: tRRD, Sibling: true},
	}
	spec.TimingTable[bank][CmdPRE] = []devicespec.TimingConstraint{
		{ReadyCmd: CmdACT, Window: 1, Val: tRP},
	}
	spec.TimingTable[bank][CmdPREA] = []devicespec.TimingConstraint{
		{ReadyCmd: CmdACT, Window: 1, Val: tRP},
	}
	spec.TimingTable[bank][CmdRD] = []devicespec.TimingConstraint{
		{ReadyCmd: CmdPRE, Window: 1, Val: tRTP},
		{ReadyCmd: CmdRD, Window: 1, Val: tCCDS},
		{ReadyCmd: CmdWR, Window: 1, Val: tCCDS},
	}
	spec.TimingTable[bank][CmdWR] = []devicespec.TimingConstraint{
		{ReadyCmd: CmdPRE, Window: 1, Val: tWR},
		{ReadyCmd: CmdRD, Window: 1, Val: tWTR},
		{ReadyCmd: CmdWR, Window: 1, Val: tCCDS},
	}
	spec.TimingTable[bank][CmdREFab] = []devicespec.TimingConstraint{
		{ReadyCmd: CmdACT, Window: 1, Val: tRFC},
	}
	spec.TimingTable[bank][CmdREFsb] = []devicespec.TimingConstraint{
		{ReadyCmd: CmdACT, Window: 1, Val: tRFCsb},
	}

	if cfg.Power && cfg.Stats != nil {
		stats := cfg.Stats
		spec.Powers[bank][CmdACT] = func(node devicespec.NodeView, cmd int, addrVec []int, clk int64) { stats.Activates++ }
		spec.Powers[bank][CmdPRE] = func(node devicespec.NodeView, cmd int, addrVec []int, clk int64) { stats.Precharges++ }
		spec.Powers[bank][CmdPREA] = func(node devicespec.NodeView, cmd int, addrVec []int, clk int64) { stats.Precharges++ }
		spec.Powers[bank][CmdRD] = func(node devicespec.NodeView, cmd int, addrVec []int, clk int64) { stats.Reads++ }
		spec.Powers[bank][CmdWR] = func(node devicespec.NodeView, cmd int, addrVec []int, clk int64) { stats.Writes++ }
		spec.Powers[bank][CmdREFab] = func(node devicespec.NodeView, cmd int, addrVec []int, clk int64) { stats.Refreshes++ }
		spec.Powers[bank][CmdREFsb] = func(node devicespec.NodeView, cmd int, addrVec []int, clk int64) { stats.Refreshes++ }
	}

	return spec
}
