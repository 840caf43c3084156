package tomasulo

import (
	"errors"
	"fmt"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
)

// Errors returned when a program cannot run on the machine.
var (
	// ErrRegisterRange is returned for a register the machine does not have.
	ErrRegisterRange = errors.New("register out of range")
	// ErrAddressRange is returned for a load or store outside data memory.
	ErrAddressRange = errors.New("address out of range")
)

// Entry is an instruction together with the cycles at which it reached each
// stage. A zero cycle means the stage has not been reached.
type Entry struct {
	Inst *insts.Instruction

	Issue        uint64
	ExecComplete uint64
	WriteResult  uint64
}

// Statistics holds scheduler performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Issued is the number of instructions issued.
	Issued uint64
	// Completed is the number of instructions that wrote their result.
	Completed uint64
	// IssueStalls is the number of cycles issue waited for a free station.
	IssueStalls uint64
	// StallsByKind splits IssueStalls by the pool that was exhausted.
	StallsByKind [numKinds]uint64
	// Broadcasts is the number of results published on the result bus.
	Broadcasts uint64
	// NonFinite is the number of results that were Inf or NaN.
	NonFinite uint64
}

// CPI returns the cycles per completed instruction.
func (s Statistics) CPI() float64 {
	if s.Completed == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Completed)
}

// Stalls returns the number of issue stalls caused by a pool.
func (s Statistics) Stalls(kind StationKind) uint64 {
	if kind >= numKinds {
		return 0
	}
	return s.StallsByKind[kind]
}

// SchedulerOption is a functional option for configuring the Scheduler.
type SchedulerOption func(*Scheduler)

// WithLatencyTable sets the latency table and pool capacities.
func WithLatencyTable(table *latency.Table) SchedulerOption {
	return func(s *Scheduler) {
		s.latencyTable = table
	}
}

// WithRegFile sets the register file. Integer base registers must be set
// before the scheduler is created.
func WithRegFile(regFile *emu.RegFile) SchedulerOption {
	return func(s *Scheduler) {
		s.regFile = regFile
	}
}

// WithMemory sets the data memory.
func WithMemory(memory *emu.Memory) SchedulerOption {
	return func(s *Scheduler) {
		s.memory = memory
	}
}

// Scheduler owns the whole machine state and advances it one cycle at a
// time.
type Scheduler struct {
	entries []*Entry
	next    int // index of the next instruction to issue

	pool      *Pool
	regStatus *RegisterStatus
	regFile   *emu.RegFile
	memory    *emu.Memory

	latencyTable *latency.Table

	cycle uint64
	stats Statistics
}

// NewScheduler creates a scheduler for the given program. The program is
// checked against the machine: register numbers, even double-precision
// registers, and load/store addresses.
func NewScheduler(program []*insts.Instruction, opts ...SchedulerOption) (*Scheduler, error) {
	s := &Scheduler{
		regStatus: NewRegisterStatus(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.latencyTable == nil {
		s.latencyTable = latency.NewTable()
	}
	if s.regFile == nil {
		s.regFile = emu.NewRegFile()
	}
	if s.memory == nil {
		s.memory = emu.NewMemory()
	}

	if err := s.latencyTable.Config().Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}

	s.pool = NewPool(s.latencyTable.Config())

	s.entries = make([]*Entry, 0, len(program))
	for i, inst := range program {
		if err := s.validate(inst); err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, inst, err)
		}
		s.entries = append(s.entries, &Entry{Inst: inst})
	}

	return s, nil
}

func (s *Scheduler) validate(inst *insts.Instruction) error {
	if inst == nil {
		return fmt.Errorf("%w: nil instruction", insts.ErrMalformed)
	}

	switch {
	case inst.Op.IsArithmetic():
		for _, reg := range []uint8{inst.Rd, inst.Rs, inst.Rt} {
			if err := checkFPRegister(reg); err != nil {
				return err
			}
		}
	case inst.Op.IsMemory():
		if err := checkFPRegister(inst.Rt); err != nil {
			return err
		}
		if int(inst.Rs) >= emu.NumIntRegisters {
			return fmt.Errorf("%w: R%d", ErrRegisterRange, inst.Rs)
		}
		addr := s.regFile.ReadInt(inst.Rs) + inst.Imm
		if _, err := s.memory.WordIndex(addr); err != nil {
			return fmt.Errorf("%w: %v", ErrAddressRange, err)
		}
	default:
		return fmt.Errorf("%w: %s", insts.ErrUnknownOp, inst.Op)
	}

	return nil
}

func checkFPRegister(reg uint8) error {
	if int(reg) >= emu.NumFPRegisters {
		return fmt.Errorf("%w: F%d", ErrRegisterRange, reg)
	}
	if reg%2 != 0 {
		return fmt.Errorf("%w: F%d is not an even double-precision register",
			ErrRegisterRange, reg)
	}
	return nil
}

// Advance simulates one clock cycle: write-result, then execute, then issue.
// Write-result must see last cycle's completions before execute runs, and
// issue must see the stations write-result just freed.
func (s *Scheduler) Advance() {
	s.cycle++
	s.stats.Cycles++

	s.writeResult()
	s.execute()
	s.issue()
}

// Done returns true once every instruction has written its result.
func (s *Scheduler) Done() bool {
	return s.stats.Completed == uint64(len(s.entries))
}

// Run advances until every instruction has written its result.
// Returns the number of cycles simulated.
func (s *Scheduler) Run() uint64 {
	for !s.Done() {
		s.Advance()
	}
	return s.cycle
}

// RunCycles advances at most the given number of cycles.
// Returns true if instructions are still in flight.
func (s *Scheduler) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !s.Done(); i++ {
		s.Advance()
	}
	return !s.Done()
}

// Cycle returns the current clock cycle. It is 0 before the first Advance.
func (s *Scheduler) Cycle() uint64 {
	return s.cycle
}

// NextToIssue returns the index of the next instruction to issue.
func (s *Scheduler) NextToIssue() int {
	return s.next
}

// Entries returns a copy of the instruction store.
func (s *Scheduler) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = *e
	}
	return out
}

// Stations returns a copy of every reservation station in scan order.
func (s *Scheduler) Stations() []Station {
	stations := s.pool.Stations()
	out := make([]Station, len(stations))
	for i, st := range stations {
		out[i] = *st
	}
	return out
}

// Pool returns the reservation-station pool.
func (s *Scheduler) Pool() *Pool {
	return s.pool
}

// RegisterStatus returns the register status table.
func (s *Scheduler) RegisterStatus() *RegisterStatus {
	return s.regStatus
}

// RegFile returns the register file.
func (s *Scheduler) RegFile() *emu.RegFile {
	return s.regFile
}

// Memory returns the data memory.
func (s *Scheduler) Memory() *emu.Memory {
	return s.memory
}

// Stats returns performance statistics.
func (s *Scheduler) Stats() Statistics {
	return s.stats
}
