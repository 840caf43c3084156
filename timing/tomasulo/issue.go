package tomasulo

import "github.com/sarchlab/tomasim/insts"

// issue admits the next instruction in program order into a free station of
// its pool. When the pool is exhausted nothing happens and the same
// instruction is retried next cycle.
func (s *Scheduler) issue() {
	if s.next >= len(s.entries) {
		return
	}

	entry := s.entries[s.next]
	inst := entry.Inst
	kind := KindFor(inst.Op)

	tag, ok := s.pool.FindFree(kind, s.cycle)
	if !ok {
		s.stats.IssueStalls++
		s.stats.StallsByKind[kind]++
		return
	}

	lat := s.latencyTable.GetLatency(inst)

	switch inst.Op {
	case insts.OpLD:
		base := Operand{Value: float64(s.regFile.ReadInt(inst.Rs))}
		s.pool.Bind(tag, s.next, lat, base, Operand{}, inst.Imm)
		s.regStatus.Set(inst.Rt, tag)

	case insts.OpSD:
		base := Operand{Value: float64(s.regFile.ReadInt(inst.Rs))}
		data := s.readOperand(inst.Rt)
		s.pool.Bind(tag, s.next, lat, base, data, inst.Imm)

	default:
		// Sources are read before the destination is renamed, so
		// ADD.D F2, F2, F4 waits on the old producer of F2.
		j := s.readOperand(inst.Rs)
		k := s.readOperand(inst.Rt)
		s.pool.Bind(tag, s.next, lat, j, k, 0)
		s.regStatus.Set(inst.Rd, tag)
	}

	entry.Issue = s.cycle
	s.next++
	s.stats.Issued++
}

// readOperand returns the register value, or its pending producer.
func (s *Scheduler) readOperand(reg uint8) Operand {
	if tag := s.regStatus.Get(reg); !tag.IsNone() {
		return Operand{Tag: tag}
	}
	return Operand{Value: s.regFile.ReadFP(reg)}
}
