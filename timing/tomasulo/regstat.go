package tomasulo

import "github.com/sarchlab/tomasim/emu"

// RegisterStatus records, for each floating-point register, the station
// whose result the register is waiting for.
type RegisterStatus struct {
	qi [emu.NumFPRegisters]Tag
}

// NewRegisterStatus creates a table with no pending producers.
func NewRegisterStatus() *RegisterStatus {
	return &RegisterStatus{}
}

// Get returns the pending producer of a register.
func (r *RegisterStatus) Get(reg uint8) Tag {
	if int(reg) >= len(r.qi) {
		return NoTag
	}
	return r.qi[reg]
}

// Set renames a register to a new producer. A newer producer simply
// overwrites an older one.
func (r *RegisterStatus) Set(reg uint8, tag Tag) {
	if int(reg) >= len(r.qi) {
		return
	}
	r.qi[reg] = tag
}

// Clear marks a register as holding its architectural value.
func (r *RegisterStatus) Clear(reg uint8) {
	r.Set(reg, NoTag)
}

// Tags returns a copy of the table.
func (r *RegisterStatus) Tags() []Tag {
	out := make([]Tag, len(r.qi))
	copy(out, r.qi[:])
	return out
}
