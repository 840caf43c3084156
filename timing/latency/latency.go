// Package latency provides instruction timing models for cycle-accurate simulation.
//
// The default values follow the classic Tomasulo textbook machine and can be
// overridden via TimingConfig.
package latency

import (
	"github.com/sarchlab/tomasim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the number of execute cycles the given instruction
// spends in its reservation station once its operands are ready.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	switch inst.Op {
	case insts.OpADDD:
		return t.config.AddLatency
	case insts.OpSUBD:
		return t.config.SubLatency
	case insts.OpMULD:
		return t.config.MulLatency
	case insts.OpDIVD:
		return t.config.DivLatency
	case insts.OpLD:
		return t.config.LoadLatency
	case insts.OpSD:
		return t.config.StoreLatency
	default:
		return 1
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
