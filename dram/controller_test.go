package dram

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/dramsim/ddr4"
	"github.com/sarchlab/dramsim/dramdevice"
	"github.com/sarchlab/dramsim/plugin"
	"github.com/sarchlab/dramsim/refresh"
	"github.com/sarchlab/dramsim/request"
	"github.com/sarchlab/dramsim/rowpolicy"
	"github.com/sarchlab/dramsim/scheduler"
	"github.com/sarchlab/dramsim/sim"
	"github.com/sarchlab/dramsim/sim/hooking"
)

func newTestComp() *Comp {
	spec := ddr4.New(ddr4.Config{
		RanksPerChannel:   1,
		BankGroupsPerRank: 1,
		BanksPerBankGroup: 2,
	})
	dev := dramdevice.New(spec)

	return NewComp(
		"MemCtrl",
		sim.NewSerialEngine(),
		1*sim.GHz,
		dev,
		scheduler.NewFRFCFS(),
		refresh.NewAllBank(100000, ddr4.CmdREFab, len(spec.LevelSize)+1),
		rowpolicy.OpenPage{},
		plugin.Pipeline{},
		Config{},
	)
}

var _ = Describe("Controller", func() {
	var comp *Comp

	BeforeEach(func() {
		comp = newTestComp()
	})

	It("should admit a write and complete it once ACT and WR clear their timing", func() {
		done := false
		w := request.New(0, request.TypeWrite)
		w.Callback = func(*request.Request) { done = true }

		Expect(comp.Send(w)).To(BeTrue())

		for i := 0; i < 100 && (comp.write.Len() > 0 || comp.active.Len() > 0); i++ {
			comp.Tick()
		}

		Expect(comp.write.Len()).To(Equal(0))
		Expect(comp.active.Len()).To(Equal(0))
		// Writes have no return trip: they simply erase on FinalCommand.
		Expect(done).To(BeFalse())
	})

	It("should serve a read's callback exactly read_latency cycles after its column command", func() {
		var servedAt int64 = -1
		r := request.New(64, request.TypeRead)
		r.Callback = func(req *request.Request) { servedAt = comp.clk }

		Expect(comp.Send(r)).To(BeTrue())

		for i := 0; i < 200 && servedAt < 0; i++ {
			comp.Tick()
		}

		// ACT issues on the first tick, RD t_RCD later, and the data returns
		// read_latency cycles after the RD.
		Expect(servedAt).To(Equal(int64(1 + ddr4.DefaultTRCD + ddr4.DefaultReadLatency)))
	})

	It("should forward a read behind a pending write to the same address without re-opening the row", func() {
		w := request.New(128, request.TypeWrite)
		Expect(comp.Send(w)).To(BeTrue())

		r := request.New(128, request.TypeRead)
		served := false
		r.Callback = func(*request.Request) { served = true }
		Expect(comp.Send(r)).To(BeTrue())

		Expect(comp.pending.Len()).To(Equal(1))
		Expect(comp.read.Len()).To(Equal(0))

		for i := 0; i < 10 && !served; i++ {
			comp.Tick()
		}

		Expect(served).To(BeTrue())
	})

	It("should reject a send once its target buffer is full", func() {
		// A zero-capacity buffer still admits exactly one request, per
		// request.Buffer's own off-by-one admission check.
		comp.write = request.NewBuffer(0)

		first := request.New(0, request.TypeWrite)
		second := request.New(4096, request.TypeWrite)

		Expect(comp.Send(first)).To(BeTrue())
		Expect(comp.Send(second)).To(BeFalse())
	})

	It("should count a first access to a closed bank as a row miss", func() {
		r1 := request.New(0, request.TypeRead)
		Expect(comp.Send(r1)).To(BeTrue())

		for i := 0; i < 50 && comp.stats.Get("row_misses")+comp.stats.Get("row_hits") == 0; i++ {
			comp.Tick()
		}

		Expect(comp.stats.Get("row_misses")).To(Equal(uint64(1)))
	})

	It("should bracket a served read with a task-start and task-end hook", func() {
		rec := &recordingHook{}
		comp.AcceptTaskHook(rec)

		r := request.New(0, request.TypeRead)
		Expect(comp.Send(r)).To(BeTrue())
		Expect(r.TraceID).NotTo(BeEmpty())

		for i := 0; i < 100 && len(rec.ends) == 0; i++ {
			comp.Tick()
		}

		Expect(rec.starts).To(ContainElement(r.TraceID))
		Expect(rec.ends).To(ContainElement(r.TraceID))
	})
})

type recordingHook struct {
	starts []string
	ends   []string
}

func (h *recordingHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case hooking.HookPosTaskStart:
		h.starts = append(h.starts, ctx.Item.(hooking.TaskStart).ID)
	case hooking.HookPosTaskEnd:
		h.ends = append(h.ends, ctx.Item.(hooking.TaskEnd).ID)
	}
}
