// Package main provides the entry point for tomasim.
// tomasim is a cycle-accurate Tomasulo scheduling simulator built on Akita.
//
// For the full CLI, use: go run ./cmd/tomasulo
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("tomasim - Tomasulo Scheduling Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: tomasulo [options] <trace>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -o, --output   File receiving per-cycle snapshots (default output.txt)")
	fmt.Println("  --config       Path to timing configuration JSON file")
	fmt.Println("  --base-reg     Integer register preset before the run (default 1)")
	fmt.Println("  --base-value   Value of the preset register (default 16)")
	fmt.Println("  --record       Record the run into a sqlite database")
	fmt.Println("  -v             Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/tomasulo' for the full CLI.")
	fmt.Println("Run 'go run ./cmd/benchmark' for the timing benchmark kernels.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/tomasulo' instead.")
	}
}
