package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
)

// printSummary renders the front-end's and controller's finalize-time
// counters as two colorized key/value tables.
func printSummary(frontStats, ctrlStats map[string]interface{}) {
	heading := color.New(color.FgCyan, color.Bold)
	key := color.New(color.FgYellow)

	heading.Println("front-end")
	printTable(key, frontStats)

	fmt.Println()

	heading.Println("controller")
	printTable(key, ctrlStats)
}

func printTable(key *color.Color, stats map[string]interface{}) {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key.Printf("  %-24s", name)
		fmt.Printf("%v\n", stats[name])
	}
}
