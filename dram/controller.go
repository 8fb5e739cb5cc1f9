// Package dram implements a single-channel DRAM memory controller: the
// cycle-accurate pipeline that turns a stream of read/write requests into
// DRAM commands issued against a dramdevice.Device, respecting its timing
// constraints, refresh pressure, row policy and plugin pipeline.
package dram

import (
	"fmt"

	"github.com/sarchlab/dramsim/dramdevice"
	"github.com/sarchlab/dramsim/plugin"
	"github.com/sarchlab/dramsim/refresh"
	"github.com/sarchlab/dramsim/request"
	"github.com/sarchlab/dramsim/rowpolicy"
	"github.com/sarchlab/dramsim/scheduler"
	"github.com/sarchlab/dramsim/sim"
	"github.com/sarchlab/dramsim/sim/hooking"
)

// Config collects the buffer capacities and write-mode watermarks a
// controller needs on top of its device, scheduler, refresh manager, row
// policy and plugins.
type Config struct {
	ActiveBufSize   int
	PriorityBufSize int
	ReadBufSize     int
	WriteBufSize    int

	// WriteLowWatermark and WriteHighWatermark are write-buffer fill ratios
	// (0, 1] that drive the read/write mode hysteresis: the controller
	// enters write mode once fill reaches WriteHighWatermark (or the read
	// buffer runs dry) and leaves it once fill drops below
	// WriteLowWatermark while reads are waiting.
	WriteLowWatermark  float64
	WriteHighWatermark float64
}

func (c Config) withDefaults() Config {
	if c.ActiveBufSize == 0 {
		c.ActiveBufSize = 16
	}
	if c.PriorityBufSize == 0 {
		c.PriorityBufSize = 16
	}
	if c.ReadBufSize == 0 {
		c.ReadBufSize = 64
	}
	if c.WriteBufSize == 0 {
		c.WriteBufSize = 64
	}
	if c.WriteLowWatermark == 0 {
		c.WriteLowWatermark = 0.2
	}
	if c.WriteHighWatermark == 0 {
		c.WriteHighWatermark = 0.8
	}

	return c
}

// Comp is a single-channel DRAM memory controller.
type Comp struct {
	*sim.TickingComponent

	topPort sim.Port

	dev       *dramdevice.Device
	sched     scheduler.Scheduler
	refresher refresh.Manager
	rowPolicy rowpolicy.Policy
	plugins   plugin.Pipeline

	cfg Config
	clk int64

	active   *request.Buffer
	priority *request.Buffer
	read     *request.Buffer
	write    *request.Buffer
	pending  *request.Buffer

	writeMode bool

	// closeDeadlines tracks, per addressed bank, the cycle by which a row
	// policy has asked for that bank to be precharged. Keyed by the
	// addressed bank's vector up to and including RowLevel, joined into a
	// string, since it must survive the owning request being removed from
	// its buffer at completion.
	closeDeadlines map[string]bankDeadline

	stats *Stats

	// taskHooks fires TaskStart/TaskEnd events tracking a request's
	// lifetime from Send to completion, independent of the engine's own
	// per-event sim.Hook mechanism used for low-level instrumentation.
	taskHooks hooking.HookableBase
}

type bankDeadline struct {
	vec      []int
	deadline int64
}

// NewComp builds a controller around dev, wiring the given scheduler,
// refresh manager, row policy and plugin pipeline.
func NewComp(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	dev *dramdevice.Device,
	sched scheduler.Scheduler,
	refresher refresh.Manager,
	rowPolicy rowpolicy.Policy,
	plugins plugin.Pipeline,
	cfg Config,
) *Comp {
	cfg = cfg.withDefaults()

	c := &Comp{
		dev:       dev,
		sched:     sched,
		refresher: refresher,
		rowPolicy: rowPolicy,
		plugins:   plugins,
		cfg:       cfg,
		active:    request.NewBuffer(cfg.ActiveBufSize),
		priority:  request.NewBuffer(cfg.PriorityBufSize),
		read:      request.NewBuffer(cfg.ReadBufSize),
		write:     request.NewBuffer(cfg.WriteBufSize),
		pending:        request.NewBuffer(cfg.ReadBufSize),
		closeDeadlines: make(map[string]bankDeadline),
		stats:          NewStats(),
	}

	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)
	c.topPort = sim.NewPort(c, 4, 4, name+".Top")
	c.AddPort("Top", c.topPort)

	return c
}

// TopPort is the port a front-end connects to in order to deliver ReqMsgs.
func (c *Comp) TopPort() sim.Port { return c.topPort }

// Stats returns the controller's counter registry.
func (c *Comp) Stats() *Stats { return c.stats }

// AcceptTaskHook registers a hook observing the lifetime of every request
// this controller serves (TaskStart at Send, TaskEnd at completion), the
// tracing-layer hook mechanism kept separate from the engine's own
// per-event sim.Hook.
func (c *Comp) AcceptTaskHook(hook hooking.Hook) {
	c.taskHooks.AcceptHook(hook)
}

// Clk returns the controller's current clock cycle.
func (c *Comp) Clk() int64 { return c.clk }

// Idle reports whether every buffer the controller owns is empty, the
// condition a driver waits for after its front-end reports finished before
// calling Finalize.
func (c *Comp) Idle() bool {
	return c.active.Len() == 0 &&
		c.priority.Len() == 0 &&
		c.read.Len() == 0 &&
		c.write.Len() == 0 &&
		c.pending.Len() == 0
}

// Send enqueues req for ordinary servicing, stamping its final command from
// the device's request-type map if the caller has not already set one. A
// read to an address with a pending write still in the write buffer is
// short-circuited straight to the pending-return queue, since the write
// ahead of it already defines the value a real device would return.
// Returns false if the target buffer has no room.
func (c *Comp) Send(req *request.Request) bool {
	if req.FinalCommand == request.NoCommand {
		req.FinalCommand = c.dev.Spec().RequestTypeCommand[req.TypeID]
	}

	if req.AddrVec == nil {
		req.AddrVec = c.dev.Spec().DecodeAddr(req.Addr)
	}

	if req.TraceID == "" {
		req.TraceID = sim.GetIDGenerator().Generate()
		c.taskHooks.InvokeHook(hooking.HookCtx{
			Domain: &c.taskHooks,
			Pos:    hooking.HookPosTaskStart,
			Item: hooking.TaskStart{
				ID:    req.TraceID,
				Kind:  "request",
				What:  requestKindName(req.TypeID),
				Where: c.Name(),
			},
		})
	}

	c.stats.recordRequestType(req.TypeID)

	if req.IsRead() && c.hasPendingWriteTo(req.Addr) {
		req.Depart = request.Clk(c.clk) + 1

		return c.pending.Enqueue(req)
	}

	req.Arrive = request.Clk(c.clk)

	if req.IsWrite() {
		return c.write.Enqueue(req)
	}

	return c.read.Enqueue(req)
}

// PrioritySend enqueues req directly into the priority buffer, bypassing
// the read/write split. Used by the refresh manager and other maintenance
// injectors whose requests already carry a fully-stamped command.
func (c *Comp) PrioritySend(req *request.Request) bool {
	if req.Arrive < 0 {
		req.Arrive = request.Clk(c.clk)
	}

	return c.priority.Enqueue(req)
}

func (c *Comp) hasPendingWriteTo(addr int64) bool {
	for _, w := range c.write.All() {
		if w.Addr == addr {
			return true
		}
	}

	return false
}

// Tick advances the controller by one cycle. It always reports progress:
// the clock and refresh deadlines advance every cycle regardless of whether
// any request happens to move, so a controller never falls silent on its
// own while the simulation is still running.
func (c *Comp) Tick() bool {
	c.clk++

	c.sampleQueueLengths()
	c.serveCompletedReads()
	c.refresher.Tick(c.clk, c)
	c.flushDueCloses()
	c.scheduleAndIssue()
	c.parseTop()

	return true
}

func (c *Comp) sampleQueueLengths() {
	c.stats.AddFloat("active_queue_len", float64(c.active.Len()))
	c.stats.AddFloat("priority_queue_len", float64(c.priority.Len()))
	c.stats.AddFloat("read_queue_len", float64(c.read.Len()))
	c.stats.AddFloat("write_queue_len", float64(c.write.Len()))
}

// serveCompletedReads pops every pending read whose return cycle has
// elapsed, in issue order, invoking its callback.
func (c *Comp) serveCompletedReads() {
	for {
		front := c.pending.Front()
		if front == nil || int64(front.Depart) > c.clk {
			return
		}

		c.pending.PopFront()
		if front.Arrive >= 0 {
			c.stats.recordReadLatency(front.Depart - front.Arrive)
		}
		c.endTrace(front)

		if front.Callback != nil {
			front.Callback(front)
		}
	}
}

// endTrace closes out the hooking task a traced request opened at Send, a
// no-op for requests PrioritySend injected directly (refresh, maintenance)
// without ever going through Send.
func (c *Comp) endTrace(req *request.Request) {
	if req.TraceID == "" {
		return
	}

	c.taskHooks.InvokeHook(hooking.HookCtx{
		Domain: &c.taskHooks,
		Pos:    hooking.HookPosTaskEnd,
		Item:   hooking.TaskEnd{ID: req.TraceID},
	})
}

func requestKindName(t request.Type) string {
	switch t {
	case request.TypeRead:
		return "read"
	case request.TypeWrite:
		return "write"
	case request.TypePartialWrite:
		return "partial_write"
	default:
		return "other"
	}
}

// scheduleAndIssue implements the controller's one-command-per-cycle
// selection and issue step.
func (c *Comp) scheduleAndIssue() {
	found, req := c.schedule()

	if found {
		c.classifyOnFirstSelection(req)
	}

	c.rowPolicy.Apply(found, req, c.clk)
	c.plugins.Update(found, req, c.clk, c.stats)

	if !found {
		return
	}

	c.issue(req)
}

// classifyOnFirstSelection records the row-hit/conflict/miss outcome the
// very first time a request is chosen by the scheduler, evaluated against
// its eventual access command (FinalCommand) rather than whatever
// intermediate prerequisite command req.Command currently resolves to:
// by the time the access command itself issues, any conflicting row has
// already been resolved by a forced PRE/ACT, which would make every access
// look like a hit.
func (c *Comp) classifyOnFirstSelection(req *request.Request) {
	if req.IsStatUpdated {
		return
	}

	meta := c.dev.Spec().Meta
	if req.FinalCommand < 0 || req.FinalCommand >= len(meta) || !meta[req.FinalCommand].IsAccess {
		return
	}

	hit := c.dev.CheckRowBufferHit(req.FinalCommand, req.AddrVec, c.clk)
	open := c.dev.CheckNodeOpen(req.FinalCommand, req.AddrVec, c.clk)

	c.stats.recordAccess(req.SourceID, hit, open)
	req.IsStatUpdated = true
}

// schedule tries the active buffer, then the priority buffer, then the
// write-mode-selected read or write buffer, returning the first ready
// candidate it finds.
func (c *Comp) schedule() (bool, *request.Request) {
	if req := c.sched.GetBestRequest(c.active, c.dev, c.clk); req != nil {
		if c.dev.CheckReady(req.Command, req.AddrVec, c.clk) {
			return true, req
		}
	}

	if c.priority.Len() > 0 {
		req := c.priority.Front()
		req.Command = c.dev.GetPreqCommand(req.FinalCommand, req.AddrVec, c.clk)

		if c.dev.CheckReady(req.Command, req.AddrVec, c.clk) {
			return true, req
		}

		return false, nil
	}

	c.updateWriteMode()

	buf := c.read
	if c.writeMode {
		buf = c.write
	}

	req := c.sched.GetBestRequest(buf, c.dev, c.clk)
	if req == nil {
		return false, nil
	}

	if !c.dev.CheckReady(req.Command, req.AddrVec, c.clk) {
		return false, nil
	}

	return true, req
}

func (c *Comp) updateWriteMode() {
	fill := c.write.FillRatio()

	if fill >= c.cfg.WriteHighWatermark || c.read.Len() == 0 {
		c.writeMode = true
		return
	}

	if fill < c.cfg.WriteLowWatermark && c.read.Len() > 0 {
		c.writeMode = false
	}
}

func (c *Comp) issue(req *request.Request) {
	meta := c.dev.Spec().Meta
	cmd := req.Command

	if cmd >= 0 && cmd < len(meta) && meta[cmd].IsClosing && c.closingConflictsWithActive(req) {
		return
	}

	if cmd >= 0 && cmd < len(meta) && meta[cmd].IsAccess {
		c.recordRowPolicyFollowup(req)
	}

	c.dev.IssueCommand(cmd, req.AddrVec, c.clk)

	switch {
	case cmd == req.FinalCommand:
		c.completeRequest(req)
	case cmd >= 0 && cmd < len(meta) && meta[cmd].IsOpening:
		c.promoteToActive(req)
	}
}

// closingConflictsWithActive reports whether issuing req's closing command
// would yank an open bank out from under a request already promoted to the
// active buffer. Bank-level address slots are compared up to and including
// the bank level; -1 slots are wildcards on either side.
func (c *Comp) closingConflictsWithActive(req *request.Request) bool {
	bankLevel := c.dev.Spec().RowLevel

	for _, a := range c.active.All() {
		if addrVecConflicts(req.AddrVec, a.AddrVec, bankLevel) {
			return true
		}
	}

	return false
}

func addrVecConflicts(a, b []int, throughLevel int) bool {
	for level := 0; level <= throughLevel; level++ {
		av, bv := -1, -1
		if level < len(a) {
			av = a[level]
		}
		if level < len(b) {
			bv = b[level]
		}

		if av == -1 || bv == -1 {
			continue
		}
		if av != bv {
			return false
		}
	}

	return true
}

// recordRowPolicyFollowup consults the scratchpad annotations a row policy
// left on req (see package rowpolicy) and schedules the close that policy
// asked for: either immediately, by registering a due deadline for this
// tick's flushDueCloses to pick up at the very next cycle, or at the
// annotated future cycle.
func (c *Comp) recordRowPolicyFollowup(req *request.Request) {
	bankLevel := c.dev.Spec().RowLevel
	key := bankKey(req.AddrVec, bankLevel)

	if req.Scratchpad[rowpolicy.ScratchCloseAfterAccess] != 0 {
		c.closeDeadlines[key] = bankDeadline{vec: req.AddrVec, deadline: c.clk}
		return
	}

	if deadline := req.Scratchpad[rowpolicy.ScratchCloseDeadline]; deadline != 0 {
		c.closeDeadlines[key] = bankDeadline{vec: req.AddrVec, deadline: int64(deadline)}
	}
}

// flushDueCloses synthesizes a priority close command for every bank whose
// row policy deadline has elapsed.
func (c *Comp) flushDueCloses() {
	for key, bd := range c.closeDeadlines {
		if c.clk < bd.deadline {
			continue
		}

		delete(c.closeDeadlines, key)

		closeCmd := c.dev.Spec().CloseCommand
		req := request.NewFromAddrVec(bd.vec, request.TypeCount)
		req.Command = closeCmd
		req.FinalCommand = closeCmd
		c.PrioritySend(req)
	}
}

func bankKey(vec []int, throughLevel int) string {
	end := throughLevel + 1
	if end > len(vec) {
		end = len(vec)
	}

	return fmt.Sprint(vec[:end])
}

func (c *Comp) completeRequest(req *request.Request) {
	c.removeFromCurrentBuffer(req)

	if !req.IsRead() {
		// Writes have no return trip: they simply erase on FinalCommand,
		// so only the trace closes out here, never the caller's callback.
		c.endTrace(req)

		return
	}

	req.Depart = request.Clk(c.clk) + request.Clk(c.dev.Spec().ReadLatency)
	c.pending.Push(req)
}

func (c *Comp) promoteToActive(req *request.Request) {
	if c.removeFromCurrentBuffer(req) {
		c.active.Push(req)
	}
}

func (c *Comp) removeFromCurrentBuffer(req *request.Request) bool {
	for _, buf := range []*request.Buffer{c.active, c.priority, c.read, c.write} {
		if buf.Remove(req) {
			return true
		}
	}

	return false
}

// parseTop retrieves at most one waiting ReqMsg from the top port and hands
// it to Send, leaving the message in the port's incoming buffer (so it is
// retried next cycle) if the target buffer is currently full.
func (c *Comp) parseTop() {
	msg := c.topPort.PeekIncoming()
	if msg == nil {
		return
	}

	reqMsg, ok := msg.(*ReqMsg)
	if !ok {
		c.topPort.RetrieveIncoming()
		return
	}

	if !c.Send(reqMsg.Req) {
		return
	}

	c.topPort.RetrieveIncoming()
}

