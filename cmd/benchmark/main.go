// Command benchmark runs the Tomasulo timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	--csv       Output results in CSV format (default: human-readable)
//	--json      Output results in JSON format
//	--config    Timing configuration JSON file
//	--core      Run only the core kernels
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark --csv > results.csv
//
// Each kernel carries its hand-derived cycle count; the command exits with
// status 1 when any kernel misses it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tomasim/benchmarks"
	"github.com/sarchlab/tomasim/timing/latency"
)

var (
	csvOutput  bool
	jsonOutput bool
	configPath string
	coreOnly   bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Run the Tomasulo timing benchmark kernels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		return runBenchmarks()
	},
}

func init() {
	rootCmd.Flags().BoolVar(&csvOutput, "csv", false, "Output results in CSV format")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Timing configuration JSON file")
	rootCmd.Flags().BoolVar(&coreOnly, "core", false, "Run only the core kernels")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the instruction table of each kernel")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func runBenchmarks() error {
	// Configure harness
	config := benchmarks.DefaultConfig()
	config.Output = os.Stdout
	config.Verbose = verbose
	if configPath != "" {
		timingConfig, err := latency.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("error loading timing config: %w", err)
		}
		config.TimingConfig = timingConfig
	}

	// Create harness and add benchmarks
	harness := benchmarks.NewHarness(config)
	if coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	results := harness.RunAll()

	// Output results
	switch {
	case jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			return err
		}
	case csvOutput:
		harness.PrintCSV(results)
	default:
		fmt.Println("Tomasulo Timing Benchmark Harness")
		fmt.Println("=================================")
		fmt.Println("")
		harness.PrintResults(results)
	}

	summary := benchmarks.Summarize(results)
	if summary.Mismatches > 0 {
		return fmt.Errorf("%d of %d benchmarks missed their expected cycle count",
			summary.Mismatches, summary.TotalBenchmarks)
	}

	return nil
}
