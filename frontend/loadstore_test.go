package frontend

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/dramsim/config"
	"github.com/sarchlab/dramsim/ddr4"
	"github.com/sarchlab/dramsim/dram"
	"github.com/sarchlab/dramsim/dramdevice"
	"github.com/sarchlab/dramsim/plugin"
	"github.com/sarchlab/dramsim/refresh"
	"github.com/sarchlab/dramsim/rowpolicy"
	"github.com/sarchlab/dramsim/scheduler"
	"github.com/sarchlab/dramsim/sim"
)

func writeTraceFile(contents string) string {
	dir, err := os.MkdirTemp("", "frontend-trace")
	Expect(err).NotTo(HaveOccurred())

	path := filepath.Join(dir, "trace.txt")
	Expect(os.WriteFile(path, []byte(contents), 0o644)).To(Succeed())

	return path
}

var _ = Describe("LoadStoreTrace", func() {
	var (
		engine *sim.SerialEngine
		ctrl   *dram.Comp
		conn   *sim.DirectConnection
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()

		spec := ddr4.New(ddr4.Config{
			RanksPerChannel:   1,
			BankGroupsPerRank: 1,
			BanksPerBankGroup: 2,
		})
		dev := dramdevice.New(spec)

		ctrl = dram.NewComp(
			"MemCtrl", engine, 1*sim.GHz, dev,
			scheduler.NewFRFCFS(),
			refresh.NewAllBank(100000, ddr4.CmdREFab, len(spec.LevelSize)+1),
			rowpolicy.OpenPage{},
			plugin.Pipeline{},
			dram.Config{},
		)

		conn = sim.NewDirectConnection("Conn", engine, 1*sim.GHz)
	})

	It("should cycle through a two-line trace and have both requests observed by the controller", func() {
		path := writeTraceFile("LD 0\nST 64\n")
		reg := config.New(map[string]interface{}{"path": path, "clock_ratio": 1})

		front, err := NewLoadStoreTrace("Front", engine, 1*sim.GHz, ctrl.TopPort().AsRemote(), reg)
		Expect(err).NotTo(HaveOccurred())

		conn.PlugIn(front.io.own, 4)
		conn.PlugIn(ctrl.TopPort(), 4)

		for i := 0; i < 50 && ctrl.Stats().Get("reads")+ctrl.Stats().Get("writes") < 2; i++ {
			front.Tick()
			conn.Tick()
			ctrl.Tick()
		}

		Expect(ctrl.Stats().Get("reads")).To(Equal(uint64(1)))
		Expect(ctrl.Stats().Get("writes")).To(Equal(uint64(1)))
		Expect(front.sent).To(BeNumerically(">=", uint64(2)))
	})

	It("reports a config error when the trace path is missing", func() {
		reg := config.New(map[string]interface{}{})

		_, err := NewLoadStoreTrace("Front", engine, 1*sim.GHz, ctrl.TopPort().AsRemote(), reg)

		Expect(err).To(HaveOccurred())
	})
})
