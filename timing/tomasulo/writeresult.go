package tomasulo

import (
	"math"

	"github.com/sarchlab/tomasim/insts"
)

// writeResult retires every station that finished executing. Results are
// broadcast on the result bus; stores write memory instead.
func (s *Scheduler) writeResult() {
	for _, st := range s.pool.Stations() {
		if !st.Busy || st.Remaining != 0 {
			continue
		}

		// A store writes memory only once its data is available, and never in
		// the cycle the data arrived.
		if st.Tag.Kind == KindStore && (!st.Qk.IsNone() || st.GuardCycle == s.cycle) {
			continue
		}

		entry := s.entries[st.Entry]
		entry.WriteResult = s.cycle
		st.Busy = false
		st.GuardCycle = s.cycle
		s.stats.Completed++

		if st.Tag.Kind == KindStore {
			s.memory.Write(st.Addr, st.Vk)
			continue
		}

		result := s.compute(entry.Inst.Op, st)
		if math.IsInf(result, 0) || math.IsNaN(result) {
			s.stats.NonFinite++
		}

		s.broadcast(st.Tag, result)
	}
}

// compute produces the result of a finished station. Division by zero follows
// IEEE 754 and yields Inf or NaN.
func (s *Scheduler) compute(op insts.Op, st *Station) float64 {
	switch op {
	case insts.OpADDD:
		return st.Vj + st.Vk
	case insts.OpSUBD:
		return st.Vj - st.Vk
	case insts.OpMULD:
		return st.Vj * st.Vk
	case insts.OpDIVD:
		return st.Vj / st.Vk
	case insts.OpLD:
		return s.memory.Read(st.Addr)
	default:
		return 0
	}
}

// broadcast publishes a result to every register and station operand waiting
// on tag. A station that captures an operand is guarded for the rest of the
// cycle, so it starts executing next cycle.
func (s *Scheduler) broadcast(tag Tag, value float64) {
	s.stats.Broadcasts++

	for reg, qi := range s.regStatus.qi {
		if qi == tag {
			s.regFile.WriteFP(uint8(reg), value)
			s.regStatus.qi[reg] = NoTag
		}
	}

	for _, st := range s.pool.Stations() {
		if st.Qj == tag {
			st.Vj = value
			st.Qj = NoTag
			st.GuardCycle = s.cycle
		}
		if st.Qk == tag {
			st.Vk = value
			st.Qk = NoTag
			st.GuardCycle = s.cycle
		}
	}
}
