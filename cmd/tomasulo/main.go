// Command tomasulo simulates a floating-point instruction trace on a
// Tomasulo machine and writes a snapshot of the machine after every cycle.
//
// Usage:
//
//	tomasulo [flags] <trace>
//
// Flag defaults can be set through TOMASULO_OUTPUT, TOMASULO_CONFIG and
// TOMASULO_RECORD, either in the environment or in a .env file in the
// working directory.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/tebeka/atexit"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
