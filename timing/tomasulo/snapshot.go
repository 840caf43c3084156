package tomasulo

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/tomasim/emu"
)

const cellWidth = 7

var (
	instructionBorder = "+" + strings.Repeat("-", 41) + "+"
	stationBorder     = strings.Repeat("+"+strings.Repeat("-", cellWidth+1), 9) + "+"
	registerBorder    = strings.Repeat("+"+strings.Repeat("-", cellWidth+1), emu.NumFPRegisters/2) + "+"
)

// WriteSnapshot writes the per-cycle report: the clock, the instruction
// status table, the reservation stations and the register status table,
// followed by a blank line.
func (s *Scheduler) WriteSnapshot(w io.Writer) error {
	bw := bufio.NewWriter(w)

	_, _ = fmt.Fprintf(bw, "Clock Cycle: %d\n", s.cycle)
	s.writeInstructionStatus(bw)
	s.writeStations(bw)
	s.writeRegisterStatus(bw)
	_, _ = fmt.Fprintln(bw)

	return bw.Flush()
}

// WriteInstructionStatus writes only the instruction status table.
func (s *Scheduler) WriteInstructionStatus(w io.Writer) error {
	bw := bufio.NewWriter(w)
	s.writeInstructionStatus(bw)
	return bw.Flush()
}

func (s *Scheduler) writeInstructionStatus(w io.Writer) {
	_, _ = fmt.Fprintln(w, instructionBorder)
	_, _ = fmt.Fprintf(w, "| %-22s%-6s%-6s%-6s|\n", "Instructions", "Issue", "ExecC", "Write")
	_, _ = fmt.Fprintln(w, instructionBorder)

	for _, e := range s.entries {
		inst := e.Inst
		_, _ = fmt.Fprintf(w, "| %-7s", inst.Op)
		if inst.Op.IsMemory() {
			_, _ = fmt.Fprintf(w, "%-5s%-10s",
				fmt.Sprintf("F%d,", inst.Rt),
				fmt.Sprintf("%d(R%d)", inst.Imm, inst.Rs))
		} else {
			_, _ = fmt.Fprintf(w, "%-5s%-5s%-5s",
				fmt.Sprintf("F%d,", inst.Rd),
				fmt.Sprintf("F%d,", inst.Rs),
				fmt.Sprintf("F%d", inst.Rt))
		}
		_, _ = fmt.Fprintf(w, "%-6s%-6s%-6s|\n",
			formatCycle(e.Issue), formatCycle(e.ExecComplete), formatCycle(e.WriteResult))
	}

	_, _ = fmt.Fprintln(w, instructionBorder)
}

func (s *Scheduler) writeStations(w io.Writer) {
	_, _ = fmt.Fprintln(w, stationBorder)
	for _, h := range []string{"Name", "Busy", "Op", "Vj", "Vk", "Qj", "Qk", "A", "Time"} {
		_, _ = fmt.Fprintf(w, "| %-*s", cellWidth, h)
	}
	_, _ = fmt.Fprintln(w, "|")
	_, _ = fmt.Fprintln(w, stationBorder)

	for _, st := range s.pool.Stations() {
		cells := []string{st.Tag.String(), "No", "", "", "", "", "", "", ""}
		if st.Busy {
			cells = s.stationCells(st)
		}
		for _, c := range cells {
			_, _ = fmt.Fprintf(w, "| %-*s", cellWidth, c)
		}
		_, _ = fmt.Fprintln(w, "|")
		_, _ = fmt.Fprintln(w, stationBorder)
	}
}

func (s *Scheduler) stationCells(st *Station) []string {
	op := s.entries[st.Entry].Inst.Op

	vj, vk, addr := "", "", ""
	if st.Qj.IsNone() {
		vj = formatValue(st.Vj)
	}
	if st.Qk.IsNone() {
		vk = formatValue(st.Vk)
	}
	if st.IsMemory() {
		addr = strconv.FormatInt(st.Addr, 10)
	}

	return []string{
		st.Tag.String(),
		"Yes",
		op.String(),
		vj,
		vk,
		st.Qj.String(),
		st.Qk.String(),
		addr,
		strconv.FormatUint(st.Remaining, 10),
	}
}

func (s *Scheduler) writeRegisterStatus(w io.Writer) {
	_, _ = fmt.Fprintln(w, registerBorder)
	for reg := 0; reg < emu.NumFPRegisters; reg += 2 {
		_, _ = fmt.Fprintf(w, "| %-*s", cellWidth, fmt.Sprintf("F%d", reg))
	}
	_, _ = fmt.Fprintln(w, "|")
	_, _ = fmt.Fprintln(w, registerBorder)
	for reg := 0; reg < emu.NumFPRegisters; reg += 2 {
		_, _ = fmt.Fprintf(w, "| %-*s", cellWidth, s.regStatus.Get(uint8(reg)).String())
	}
	_, _ = fmt.Fprintln(w, "|")
	_, _ = fmt.Fprintln(w, registerBorder)
}

func formatCycle(c uint64) string {
	if c == 0 {
		return ""
	}
	return strconv.FormatUint(c, 10)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
