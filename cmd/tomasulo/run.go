package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/datarecording"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// options holds the command line settings of one run.
type options struct {
	output     string
	configPath string
	baseReg    uint8
	baseValue  int64
	record     bool
	recordDB   string
	verbose    bool
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "tomasulo [flags] <trace>",
		Short: "Cycle-accurate Tomasulo scheduling simulator",
		Long: `Simulates a trace of L.D, S.D, ADD.D, SUB.D, MUL.D and DIV.D ` +
			`instructions on a Tomasulo machine. A snapshot of the instruction, ` +
			`reservation station and register status tables is written for every ` +
			`cycle, and the final instruction status table is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(opts, args[0], stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o",
		envOr("TOMASULO_OUTPUT", "output.txt"),
		"file receiving the per-cycle snapshots (truncated)")
	flags.StringVar(&opts.configPath, "config",
		envOr("TOMASULO_CONFIG", ""),
		"timing configuration JSON file")
	flags.Uint8Var(&opts.baseReg, "base-reg", 1,
		"integer register preset before the run")
	flags.Int64Var(&opts.baseValue, "base-value", 16,
		"value of the preset integer register")
	flags.BoolVar(&opts.record, "record", envBool("TOMASULO_RECORD"),
		"record station occupancy and instruction timing into sqlite")
	flags.StringVar(&opts.recordDB, "record-db", "",
		"sqlite database name for --record (default: generated)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	return cmd
}

func run(opts *options, tracePath string, stdout, stderr io.Writer) error {
	prog, err := loader.Load(tracePath)
	if err != nil {
		return fmt.Errorf("error loading trace: %w", err)
	}

	timingConfig := latency.DefaultTimingConfig()
	if opts.configPath != "" {
		timingConfig, err = latency.LoadConfig(opts.configPath)
		if err != nil {
			return fmt.Errorf("error loading timing config: %w", err)
		}
	}

	if int(opts.baseReg) >= emu.NumIntRegisters {
		return fmt.Errorf("base register R%d: %w", opts.baseReg, tomasulo.ErrRegisterRange)
	}
	regFile := emu.NewRegFile()
	regFile.WriteInt(opts.baseReg, opts.baseValue)

	scheduler, err := tomasulo.NewScheduler(prog.Instructions,
		tomasulo.WithLatencyTable(latency.NewTableWithConfig(timingConfig)),
		tomasulo.WithRegFile(regFile),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", tracePath, err)
	}

	if opts.verbose {
		_, _ = fmt.Fprintf(stderr, "Loaded: %s\n", tracePath)
		_, _ = fmt.Fprintf(stderr, "Instructions: %d\n", len(prog.Instructions))
	}

	// An empty trace produces no snapshots and leaves the output file alone.
	var sink io.Writer = io.Discard
	if len(prog.Instructions) > 0 {
		out, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("error creating output: %w", err)
		}
		defer func() { _ = out.Close() }()
		sink = out
	}

	engine := sim.NewSerialEngine()
	c := core.NewCore("Core", engine, 1*sim.GHz, scheduler)

	snapshots := core.NewSnapshotHook(sink)
	c.AcceptHook(snapshots)

	var recorder *core.RecorderHook
	if opts.record {
		name := opts.recordDB
		if name == "" {
			name = "tomasulo_" + xid.New().String()
		}
		recorder = core.NewRecorderHook(datarecording.NewDataRecorder(name))
		c.AcceptHook(recorder)
	}

	if err := c.Run(); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	if recorder != nil {
		recorder.Flush()
	}
	if err := snapshots.Err(); err != nil {
		return fmt.Errorf("error writing %s: %w", opts.output, err)
	}

	if err := scheduler.WriteInstructionStatus(stdout); err != nil {
		return err
	}

	if opts.verbose {
		printStats(stderr, scheduler.Stats())
	}

	return nil
}

func printStats(w io.Writer, stats tomasulo.Statistics) {
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Total Cycles: %d\n", stats.Cycles)
	_, _ = fmt.Fprintf(w, "Instructions: %d\n", stats.Completed)
	_, _ = fmt.Fprintf(w, "CPI: %.2f\n", stats.CPI())
	_, _ = fmt.Fprintf(w, "Broadcasts: %d\n", stats.Broadcasts)
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Issue Stalls: %d\n", stats.IssueStalls)
	for _, kind := range tomasulo.StationKinds {
		_, _ = fmt.Fprintf(w, "  %-6s %d\n", kind.String()+":", stats.Stalls(kind))
	}
	if stats.NonFinite > 0 {
		_, _ = fmt.Fprintf(w, "Non-finite results: %d\n", stats.NonFinite)
	}
}
