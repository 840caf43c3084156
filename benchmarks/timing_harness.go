// Package benchmarks provides timing benchmark infrastructure for the
// Tomasulo scheduler.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the scheduler
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// ExpectedCycles is the hand-derived cycle count, 0 if unknown
	ExpectedCycles uint64 `json:"expected_cycles,omitempty"`

	// InstructionsCompleted is the number of instructions that wrote a result
	InstructionsCompleted uint64 `json:"instructions_completed"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// IssueStalls is the number of cycles issue waited for a station
	IssueStalls uint64 `json:"issue_stalls"`

	// Per-pool issue stalls
	AdderStalls      uint64 `json:"adder_stalls"`
	MultiplierStalls uint64 `json:"multiplier_stalls"`
	LoadStalls       uint64 `json:"load_stalls"`
	StoreStalls      uint64 `json:"store_stalls"`

	// Broadcasts is the number of results published on the result bus
	Broadcasts uint64 `json:"broadcasts"`

	// NonFinite is the number of Inf or NaN results
	NonFinite uint64 `json:"non_finite,omitempty"`

	// Error is set when the benchmark could not run
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Matches reports whether the run hit its expected cycle count. Benchmarks
// without an expectation always match.
func (r BenchmarkResult) Matches() bool {
	if r.Error != "" {
		return false
	}
	return r.ExpectedCycles == 0 || r.ExpectedCycles == r.SimulatedCycles
}

// Benchmark defines a single benchmark trace.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the machine state (e.g., base registers, memory)
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Configure adjusts latencies or pool sizes for this benchmark only
	Configure func(config *latency.TimingConfig)

	// Trace is the instruction sequence, one instruction per line
	Trace []string

	// ExpectedCycles is the cycle count the run should take
	ExpectedCycles uint64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// TimingConfig is the base latency and pool configuration
	TimingConfig *latency.TimingConfig

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		TimingConfig: latency.DefaultTimingConfig(),
		Output:       os.Stdout,
		Verbose:      false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.TimingConfig == nil {
		config.TimingConfig = latency.DefaultTimingConfig()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark on a fresh engine.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:           bench.Name,
		Description:    bench.Description,
		ExpectedCycles: bench.ExpectedCycles,
	}

	prog, err := loader.Parse(strings.NewReader(strings.Join(bench.Trace, "\n")))
	if err != nil {
		result.Error = err.Error()
		return result
	}

	// Create fresh state
	regFile := emu.NewRegFile()
	memory := emu.NewMemory()
	if bench.Setup != nil {
		bench.Setup(regFile, memory)
	}

	config := h.config.TimingConfig.Clone()
	if bench.Configure != nil {
		bench.Configure(config)
	}

	scheduler, err := tomasulo.NewScheduler(prog.Instructions,
		tomasulo.WithLatencyTable(latency.NewTableWithConfig(config)),
		tomasulo.WithRegFile(regFile),
		tomasulo.WithMemory(memory),
	)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	engine := sim.NewSerialEngine()
	c := core.NewCore("Core", engine, 1*sim.GHz, scheduler)

	// Run simulation and measure time
	start := time.Now()
	err = c.Run()
	result.WallTime = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	stats := c.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsCompleted = stats.Completed
	result.CPI = stats.CPI()
	result.IssueStalls = stats.IssueStalls
	result.AdderStalls = stats.Stalls(tomasulo.KindAdd)
	result.MultiplierStalls = stats.Stalls(tomasulo.KindMult)
	result.LoadStalls = stats.Stalls(tomasulo.KindLoad)
	result.StoreStalls = stats.Stalls(tomasulo.KindStore)
	result.Broadcasts = stats.Broadcasts
	result.NonFinite = stats.NonFinite

	if h.config.Verbose {
		_ = scheduler.WriteInstructionStatus(h.config.Output)
	}

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Tomasulo Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Error)
			_, _ = fmt.Fprintln(h.config.Output, "")
			continue
		}

		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:       %d\n", r.SimulatedCycles)
		if r.ExpectedCycles > 0 {
			_, _ = fmt.Fprintf(h.config.Output, "  Expected Cycles:        %d\n", r.ExpectedCycles)
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Completed: %d\n", r.InstructionsCompleted)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                    %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Broadcasts:             %d\n", r.Broadcasts)

		if r.IssueStalls > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Issue Stalls ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Total:      %d\n", r.IssueStalls)
			_, _ = fmt.Fprintf(h.config.Output, "  Adder:      %d\n", r.AdderStalls)
			_, _ = fmt.Fprintf(h.config.Output, "  Multiplier: %d\n", r.MultiplierStalls)
			_, _ = fmt.Fprintf(h.config.Output, "  Load:       %d\n", r.LoadStalls)
			_, _ = fmt.Fprintf(h.config.Output, "  Store:      %d\n", r.StoreStalls)
		}

		if r.NonFinite > 0 {
			_, _ = fmt.Fprintf(h.config.Output, "  Non-finite Results:     %d\n", r.NonFinite)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,expected_cycles,instructions,cpi,issue_stalls,adder_stalls,multiplier_stalls,load_stalls,store_stalls,broadcasts,non_finite")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.SimulatedCycles,
			r.ExpectedCycles,
			r.InstructionsCompleted,
			r.CPI,
			r.IssueStalls,
			r.AdderStalls,
			r.MultiplierStalls,
			r.LoadStalls,
			r.StoreStalls,
			r.Broadcasts,
			r.NonFinite,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Config is the base timing configuration
	Config *latency.TimingConfig `json:"config"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// Mismatches is the number of benchmarks off their expected cycles
	Mismatches int `json:"mismatches"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all completed instructions
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates a set of results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalInstructions += r.InstructionsCompleted
		summary.TotalWallTime += r.WallTime
		if !r.Matches() {
			summary.Mismatches++
		}
	}

	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalInstructions)
	}

	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Config:    h.config.TimingConfig,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
