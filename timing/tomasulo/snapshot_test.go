package tomasulo_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

var _ = Describe("Snapshot", func() {
	newTextbook := func() *tomasulo.Scheduler {
		regFile := emu.NewRegFile()
		regFile.WriteInt(1, 16)
		s, err := tomasulo.NewScheduler(program(hennessyPatterson...),
			tomasulo.WithRegFile(regFile))
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	It("should render the first cycle", func() {
		s := newTextbook()
		s.Advance()

		var buf bytes.Buffer
		Expect(s.WriteSnapshot(&buf)).To(Succeed())
		out := buf.String()

		Expect(out).To(HavePrefix("Clock Cycle: 1\n"))
		Expect(out).To(HaveSuffix("\n\n"))
		Expect(out).To(ContainSubstring(
			"| Instructions          Issue ExecC Write |\n"))
		Expect(out).To(ContainSubstring(
			"| L.D    F6,  34(R2)    1                 |\n"))
		Expect(out).To(ContainSubstring(
			"| L.D    F2,  45(R3)                      |\n"))
		Expect(out).To(ContainSubstring(
			"| Load0  | Yes    | L.D    | 0      | 0      |        |        | 34     | 2      |\n"))
		Expect(out).To(ContainSubstring(
			"| Add0   | No     |        |        |        |        |        |        |        |\n"))
		Expect(out).To(ContainSubstring(
			"| F0     | F2     | F4     | F6     | F8     |"))
		Expect(out).To(ContainSubstring(
			"|        |        |        | Load0  |        |"))
	})

	It("should show pending tags instead of values", func() {
		s := newTextbook()
		s.RunCycles(3)

		var buf bytes.Buffer
		Expect(s.WriteSnapshot(&buf)).To(Succeed())

		Expect(buf.String()).To(ContainSubstring(
			"| Mult0  | Yes    | MUL.D  |        | 1      | Load1  |        |        | 10     |\n"))
	})

	It("should keep every table row at a fixed width", func() {
		s := newTextbook()
		s.RunCycles(5)

		var buf bytes.Buffer
		Expect(s.WriteSnapshot(&buf)).To(Succeed())

		widths := map[int]bool{}
		for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n")[1:] {
			widths[len(line)] = true
		}
		Expect(widths).To(HaveLen(3))
		Expect(widths).To(HaveKey(43))
		Expect(widths).To(HaveKey(82))
		Expect(widths).To(HaveKey(145))
	})

	It("should print the final instruction status", func() {
		s := newTextbook()
		s.Run()

		var buf bytes.Buffer
		Expect(s.WriteInstructionStatus(&buf)).To(Succeed())

		Expect(buf.String()).To(ContainSubstring(
			"| DIV.D  F10, F0,  F6   5     56    57    |\n"))
		Expect(buf.String()).NotTo(ContainSubstring("Clock Cycle"))
	})

	It("should produce identical snapshots when replayed", func() {
		record := func() []byte {
			s := newTextbook()
			var buf bytes.Buffer
			for !s.Done() {
				s.Advance()
				Expect(s.WriteSnapshot(&buf)).To(Succeed())
			}
			return buf.Bytes()
		}

		first := record()
		second := record()

		Expect(first).NotTo(BeEmpty())
		Expect(bytes.Equal(first, second)).To(BeTrue())
		Expect(bytes.Count(first, []byte("Clock Cycle:"))).To(Equal(57))
	})
})
