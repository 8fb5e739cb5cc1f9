package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/dramsim/config"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Replay a trace against a configured DRAM controller and device.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(_ *cobra.Command, args []string) error {
	reg, err := config.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	sim, err := buildSimulation(reg)
	if err != nil {
		return fmt.Errorf("building simulation: %w", err)
	}

	atexit.Register(func() { flushSimulation(sim) })

	drive(sim)

	sim.busyTracer.TerminateAllTasks()

	frontStats := sim.front.Finalize()
	ctrlStats := sim.ctrl.Stats().Snapshot()
	ctrlStats["busy_time"] = sim.busyTracer.BusyTime()
	ctrlStats["average_task_time"] = sim.avgTracer.AverageTime()
	ctrlStats["task_count"] = sim.avgTracer.TotalCount()

	printSummary(frontStats, ctrlStats)

	atexit.Exit(0)

	return nil
}

// drive ticks the front-end, connection and controller by hand, the same
// way every component-level test in this repository does, since the
// controller's own Tick always reports progress and never falls silent on
// its own the way a purely self-scheduling akita component would. The
// front-end stops being ticked once it reports finished, so the controller
// can drain and go idle.
func drive(sim *simulation) {
	for !sim.front.IsFinished() || !sim.ctrl.Idle() {
		if !sim.front.IsFinished() {
			sim.front.Tick()
		}
		sim.conn.Tick()
		sim.ctrl.Tick()
	}
}

func flushSimulation(sim *simulation) {
	if sim.traceDB != nil {
		sim.traceDB.Flush()
	}

	if sim.statsServer != nil {
		if err := sim.statsServer.Stop(); err != nil {
			fmt.Fprintln(os.Stderr, "stopping stats server:", err)
		}
	}
}
