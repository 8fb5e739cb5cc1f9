package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dramsim",
	Short: "dramsim simulates a DRAM memory controller and device.",
	Long: `dramsim replays a memory-access trace against a cycle-accurate ` +
		`DRAM controller and device model, and reports the resulting ` +
		`timing statistics.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
