package tomasulo

// execute counts down every busy station whose operands are ready. The
// instruction completes execution on the cycle the counter reaches zero; for
// loads and stores that is also when the effective address is formed.
func (s *Scheduler) execute() {
	for _, st := range s.pool.Stations() {
		if !st.Busy || st.Remaining == 0 || !st.OperandsReady() {
			continue
		}
		if st.GuardCycle == s.cycle {
			continue
		}

		st.Remaining--
		if st.Remaining > 0 {
			continue
		}

		if st.IsMemory() {
			st.Addr += int64(st.Vj)
		}
		s.entries[st.Entry].ExecComplete = s.cycle
	}
}
