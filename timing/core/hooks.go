package core

import (
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// SnapshotHook writes the scheduler snapshot at the end of every cycle.
// Writing stops at the first error, which Err reports.
type SnapshotHook struct {
	w   io.Writer
	err error
}

// NewSnapshotHook creates a hook that writes snapshots to w.
func NewSnapshotHook(w io.Writer) *SnapshotHook {
	return &SnapshotHook{w: w}
}

// Func implements sim.Hook.
func (h *SnapshotHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosCycleEnd || h.err != nil {
		return
	}

	s, ok := ctx.Item.(*tomasulo.Scheduler)
	if !ok {
		return
	}

	h.err = s.WriteSnapshot(h.w)
}

// Err returns the first write error, if any.
func (h *SnapshotHook) Err() error {
	return h.err
}

// Recorder is the subset of an akita data recorder the core writes to.
type Recorder interface {
	CreateTable(tableName string, sampleEntry any)
	InsertData(tableName string, entry any)
	Flush()
}

// Table names used by RecorderHook.
const (
	StationCycleTable      = "station_cycles"
	InstructionTimingTable = "instruction_timing"
)

// StationCycleEntry is one reservation station observed at the end of one
// cycle.
type StationCycleEntry struct {
	Cycle       uint64
	Station     string
	Busy        bool
	Op          string
	Qj          string
	Qk          string
	Remaining   uint64
	Instruction int
}

// InstructionTimingEntry is the stage timing of one completed instruction.
type InstructionTimingEntry struct {
	Index        int
	Instruction  string
	Issue        uint64
	ExecComplete uint64
	WriteResult  uint64
}

// RecorderHook records station occupancy every cycle and the timing of each
// instruction in the cycle it writes its result. Call Flush once the run
// finishes to write buffered rows.
type RecorderHook struct {
	recorder Recorder
}

// NewRecorderHook creates the tables and returns the hook.
func NewRecorderHook(recorder Recorder) *RecorderHook {
	recorder.CreateTable(StationCycleTable, StationCycleEntry{})
	recorder.CreateTable(InstructionTimingTable, InstructionTimingEntry{})

	return &RecorderHook{recorder: recorder}
}

// Func implements sim.Hook.
func (h *RecorderHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosCycleEnd {
		return
	}

	s, ok := ctx.Item.(*tomasulo.Scheduler)
	if !ok {
		return
	}

	cycle := s.Cycle()
	entries := s.Entries()

	for _, st := range s.Stations() {
		row := StationCycleEntry{
			Cycle:       cycle,
			Station:     st.Tag.String(),
			Busy:        st.Busy,
			Instruction: -1,
		}
		if st.Busy {
			row.Op = entries[st.Entry].Inst.Op.String()
			row.Qj = st.Qj.String()
			row.Qk = st.Qk.String()
			row.Remaining = st.Remaining
			row.Instruction = st.Entry
		}

		h.recorder.InsertData(StationCycleTable, row)
	}

	for i, e := range entries {
		if e.WriteResult != cycle {
			continue
		}

		h.recorder.InsertData(InstructionTimingTable, InstructionTimingEntry{
			Index:        i,
			Instruction:  e.Inst.String(),
			Issue:        e.Issue,
			ExecComplete: e.ExecComplete,
			WriteResult:  e.WriteResult,
		})
	}
}

// Flush writes buffered rows to the recorder's backend.
func (h *RecorderHook) Flush() {
	h.recorder.Flush()
}
