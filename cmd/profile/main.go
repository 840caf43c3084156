// Package main provides a profiling wrapper for tomasim to identify
// performance bottlenecks in the scheduler.
//
// The trace is simulated repeatedly on fresh machines, either through the
// akita engine or by stepping the scheduler directly.
package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

var (
	direct     bool
	cpuProfile string
	memProfile string
	duration   time.Duration
	iterations int
)

var rootCmd = &cobra.Command{
	Use:   "profile [flags] <trace>",
	Short: "Profile repeated simulations of a trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return profile(args[0])
	},
}

func init() {
	rootCmd.Flags().BoolVar(&direct, "direct", false, "step the scheduler directly instead of through the akita engine")
	rootCmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "write cpu profile to file")
	rootCmd.Flags().StringVar(&memProfile, "memprofile", "", "write memory profile to file")
	rootCmd.Flags().DurationVar(&duration, "duration", 30*time.Second, "max duration to run (for profiling)")
	rootCmd.Flags().IntVar(&iterations, "iterations", 10000, "number of simulations to run")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func profile(tracePath string) error {
	// Start CPU profiling if requested
	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return fmt.Errorf("error creating CPU profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("error starting CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		atexit.Register(pprof.StopCPUProfile)
	}

	prog, err := loader.Load(tracePath)
	if err != nil {
		return fmt.Errorf("error loading trace: %w", err)
	}

	fmt.Printf("Loaded: %s\n", tracePath)
	fmt.Printf("Instructions: %d\n", len(prog.Instructions))

	start := time.Now()

	// Set timeout
	go func() {
		time.Sleep(duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", duration)
		atexit.Exit(2)
	}()

	var cycles uint64
	for i := 0; i < iterations; i++ {
		n, err := simulate(prog.Instructions)
		if err != nil {
			return err
		}
		cycles += n
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if memProfile != "" {
		f, err := os.Create(memProfile)
		if err != nil {
			return fmt.Errorf("error creating memory profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Iterations: %d\n", iterations)
	fmt.Printf("Cycles simulated: %d\n", cycles)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("Cycles/second: %.0f\n", float64(cycles)/elapsed.Seconds())
	}

	return nil
}

// simulate runs the program once on a fresh machine and returns the cycle
// count.
func simulate(program []*insts.Instruction) (uint64, error) {
	regFile := emu.NewRegFile()
	regFile.WriteInt(1, 16)

	scheduler, err := tomasulo.NewScheduler(program, tomasulo.WithRegFile(regFile))
	if err != nil {
		return 0, err
	}

	if direct {
		return scheduler.Run(), nil
	}

	engine := sim.NewSerialEngine()
	c := core.NewCore("Core", engine, 1*sim.GHz, scheduler)
	if err := c.Run(); err != nil {
		return 0, err
	}

	return scheduler.Cycle(), nil
}
