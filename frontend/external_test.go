package frontend

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/dramsim/ddr4"
	"github.com/sarchlab/dramsim/dram"
	"github.com/sarchlab/dramsim/dramdevice"
	"github.com/sarchlab/dramsim/plugin"
	"github.com/sarchlab/dramsim/refresh"
	"github.com/sarchlab/dramsim/request"
	"github.com/sarchlab/dramsim/rowpolicy"
	"github.com/sarchlab/dramsim/scheduler"
	"github.com/sarchlab/dramsim/sim"
)

var _ = Describe("External", func() {
	It("forwards a received request straight into the bound controller", func() {
		engine := sim.NewSerialEngine()

		spec := ddr4.New(ddr4.Config{
			RanksPerChannel:   1,
			BankGroupsPerRank: 1,
			BanksPerBankGroup: 2,
		})
		dev := dramdevice.New(spec)
		ctrl := dram.NewComp(
			"MemCtrl", engine, 1*sim.GHz, dev,
			scheduler.NewFRFCFS(),
			refresh.NewAllBank(100000, ddr4.CmdREFab, len(spec.LevelSize)+1),
			rowpolicy.OpenPage{},
			plugin.Pipeline{},
			dram.Config{},
		)

		front := NewExternal("Front", engine, 1*sim.GHz, ctrl, 4)

		served := false
		ok := front.ReceiveExternalRequest(request.TypeRead, 0, 2, func(*request.Request) { served = true })
		Expect(ok).To(BeTrue())

		for i := 0; i < 100 && !served; i++ {
			ctrl.Tick()
		}

		Expect(served).To(BeTrue())
		Expect(front.NumCores()).To(Equal(4))
		Expect(front.IsFinished()).To(BeFalse())
		front.SetFinished(true)
		Expect(front.IsFinished()).To(BeTrue())
	})
})
