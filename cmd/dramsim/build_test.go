package main

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/dramsim/config"
)

func writeLoadStoreTrace(contents string) string {
	dir, err := os.MkdirTemp("", "dramsim-cli-trace")
	Expect(err).NotTo(HaveOccurred())

	path := filepath.Join(dir, "trace.txt")
	Expect(os.WriteFile(path, []byte(contents), 0o644)).To(Succeed())

	return path
}

func baseConfig(tracePath string) *config.Registry {
	return config.New(map[string]interface{}{
		"device": map[string]interface{}{
			"ranks_per_channel":    1,
			"bank_groups_per_rank": 1,
			"banks_per_bank_group": 2,
		},
		"frontend": map[string]interface{}{
			"kind": "loadstore",
			"path": tracePath,
		},
	})
}

var _ = Describe("buildSimulation", func() {
	It("wires a device, controller and front-end that can run to completion", func() {
		path := writeLoadStoreTrace("LD 0\nST 64\n")

		sim, err := buildSimulation(baseConfig(path))
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.ctrl).NotTo(BeNil())
		Expect(sim.front).NotTo(BeNil())
		Expect(sim.conn).NotTo(BeNil())

		for i := 0; i < 1000 && (!sim.front.IsFinished() || !sim.ctrl.Idle()); i++ {
			if !sim.front.IsFinished() {
				sim.front.Tick()
			}
			sim.conn.Tick()
			sim.ctrl.Tick()
		}

		Expect(sim.front.IsFinished()).To(BeTrue())
		Expect(sim.ctrl.Idle()).To(BeTrue())
	})

	It("rejects an unknown scheduler kind", func() {
		path := writeLoadStoreTrace("LD 0\n")

		reg := baseConfig(path)
		cfg := map[string]interface{}{
			"device":    map[string]interface{}{"ranks_per_channel": 1, "bank_groups_per_rank": 1, "banks_per_bank_group": 2},
			"frontend":  map[string]interface{}{"kind": "loadstore", "path": path},
			"scheduler": map[string]interface{}{"kind": "prac"},
		}
		reg = config.New(cfg)

		_, err := buildSimulation(reg)
		Expect(err).To(HaveOccurred())
	})

	It("starts and stops a stats server when asked", func() {
		path := writeLoadStoreTrace("LD 0\n")

		cfg := map[string]interface{}{
			"device":   map[string]interface{}{"ranks_per_channel": 1, "bank_groups_per_rank": 1, "banks_per_bank_group": 2},
			"frontend": map[string]interface{}{"kind": "loadstore", "path": path},
			// http_port 0 disables the server, so ask for a concrete port.
			"stats":    map[string]interface{}{"http_port": 38471},
		}

		sim, err := buildSimulation(config.New(cfg))
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.statsServer).NotTo(BeNil())

		Expect(sim.statsServer.Stop()).To(Succeed())
	})
})
