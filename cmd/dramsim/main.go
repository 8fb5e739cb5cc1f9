// Command dramsim runs a DRAM controller and device simulation driven by a
// YAML configuration file and a memory-access trace.
package main

func main() {
	Execute()
}
