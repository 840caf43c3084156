// Package emu provides the architectural state of the Tomasulo model:
// the integer and floating-point register files and data memory.
package emu

// NumIntRegisters is the number of integer registers (R0-R31).
const NumIntRegisters = 32

// NumFPRegisters is the number of floating-point register slots (F0-F31).
// Double-precision values live in the even-numbered slots.
const NumFPRegisters = 32

// InitialFPValue is the value every floating-point register and memory
// word holds before a run.
const InitialFPValue = 1.0

// RegFile represents the register file.
// Integer registers are used only as load/store base registers and never
// change during a run.
type RegFile struct {
	// R holds integer registers R0-R31.
	R [NumIntRegisters]int64

	// F holds floating-point registers F0-F31.
	F [NumFPRegisters]float64
}

// NewRegFile creates a register file with integer registers cleared and
// floating-point registers set to InitialFPValue.
func NewRegFile() *RegFile {
	r := &RegFile{}
	r.Reset()
	return r
}

// Reset restores the initial register values.
func (r *RegFile) Reset() {
	for i := range r.R {
		r.R[i] = 0
	}
	for i := range r.F {
		r.F[i] = InitialFPValue
	}
}

// ReadInt reads an integer register. Out-of-range registers read as 0.
func (r *RegFile) ReadInt(reg uint8) int64 {
	if int(reg) >= NumIntRegisters {
		return 0
	}
	return r.R[reg]
}

// WriteInt writes an integer register. Writes to out-of-range registers are
// ignored.
func (r *RegFile) WriteInt(reg uint8, value int64) {
	if int(reg) >= NumIntRegisters {
		return
	}
	r.R[reg] = value
}

// ReadFP reads a floating-point register. Out-of-range registers read as 0.
func (r *RegFile) ReadFP(reg uint8) float64 {
	if int(reg) >= NumFPRegisters {
		return 0
	}
	return r.F[reg]
}

// WriteFP writes a floating-point register. Writes to out-of-range registers
// are ignored.
func (r *RegFile) WriteFP(reg uint8, value float64) {
	if int(reg) >= NumFPRegisters {
		return
	}
	r.F[reg] = value
}
