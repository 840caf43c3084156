package tomasulo_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

type stamps struct{ issue, exec, write uint64 }

func stampsOf(e tomasulo.Entry) stamps {
	return stamps{e.Issue, e.ExecComplete, e.WriteResult}
}

var _ = Describe("Scheduler", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		config  *latency.TimingConfig
	)

	BeforeEach(func() {
		regFile = emu.NewRegFile()
		regFile.WriteInt(1, 16)
		memory = emu.NewMemory()
		config = latency.DefaultTimingConfig()
	})

	newScheduler := func(lines ...string) *tomasulo.Scheduler {
		s, err := tomasulo.NewScheduler(program(lines...),
			tomasulo.WithRegFile(regFile),
			tomasulo.WithMemory(memory),
			tomasulo.WithLatencyTable(latency.NewTableWithConfig(config)),
		)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	Describe("NewScheduler", func() {
		It("should create a scheduler with defaults", func() {
			s, err := tomasulo.NewScheduler(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Cycle()).To(Equal(uint64(0)))
			Expect(s.RegFile()).NotTo(BeNil())
			Expect(s.Memory()).NotTo(BeNil())
		})

		It("should be done immediately for an empty program", func() {
			s := newScheduler()
			Expect(s.Done()).To(BeTrue())
			Expect(s.Run()).To(Equal(uint64(0)))
		})

		It("should reject odd floating-point registers", func() {
			_, err := tomasulo.NewScheduler(program("ADD.D F1, F2, F4"))
			Expect(err).To(MatchError(tomasulo.ErrRegisterRange))
		})

		It("should reject registers outside the file", func() {
			_, err := tomasulo.NewScheduler(program("L.D F40, 0(R1)"))
			Expect(err).To(MatchError(tomasulo.ErrRegisterRange))

			_, err = tomasulo.NewScheduler(program("L.D F0, 0(R40)"))
			Expect(err).To(MatchError(tomasulo.ErrRegisterRange))
		})

		It("should reject addresses outside memory", func() {
			_, err := tomasulo.NewScheduler(program("L.D F0, 64(R0)"))
			Expect(err).To(MatchError(tomasulo.ErrAddressRange))

			_, err = tomasulo.NewScheduler(program("S.D F0, -8(R0)"))
			Expect(err).To(MatchError(tomasulo.ErrAddressRange))
		})

		It("should use the base register when checking addresses", func() {
			_, err := tomasulo.NewScheduler(program("L.D F0, 50(R1)"),
				tomasulo.WithRegFile(regFile))
			Expect(err).To(MatchError(tomasulo.ErrAddressRange))

			_, err = tomasulo.NewScheduler(program("L.D F0, -16(R1)"),
				tomasulo.WithRegFile(regFile))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject unknown opcodes", func() {
			_, err := tomasulo.NewScheduler([]*insts.Instruction{{Op: insts.OpUnknown}})
			Expect(err).To(MatchError(insts.ErrUnknownOp))
		})

		It("should reject an invalid timing config", func() {
			config.AdderStations = 0
			_, err := tomasulo.NewScheduler(nil,
				tomasulo.WithLatencyTable(latency.NewTableWithConfig(config)))
			Expect(err).To(MatchError(ContainSubstring("adder_stations")))
		})
	})

	Context("load followed by a dependent add", func() {
		var s *tomasulo.Scheduler

		BeforeEach(func() {
			memory.Write(32, 2.5)
			s = newScheduler(
				"L.D F6, 34(R2)",
				"ADD.D F2, F6, F4",
			)
		})

		It("should carry the load tag into the add station", func() {
			s.RunCycles(2)

			add := s.Pool().Station(tomasulo.MakeTag(tomasulo.KindAdd, 0))
			Expect(add.Busy).To(BeTrue())
			Expect(add.Qj).To(Equal(tomasulo.MakeTag(tomasulo.KindLoad, 0)))
			Expect(add.Qk.IsNone()).To(BeTrue())
			Expect(add.Vk).To(Equal(1.0))
			Expect(s.RegisterStatus().Get(2)).To(Equal(tomasulo.MakeTag(tomasulo.KindAdd, 0)))
		})

		It("should start the add the cycle after the broadcast", func() {
			s.RunCycles(4)

			add := s.Pool().Station(tomasulo.MakeTag(tomasulo.KindAdd, 0))
			Expect(add.Qj.IsNone()).To(BeTrue())
			Expect(add.Vj).To(Equal(2.5))
			Expect(add.Remaining).To(Equal(uint64(2)))

			s.Advance()
			Expect(add.Remaining).To(Equal(uint64(1)))
		})

		It("should record the expected stage cycles", func() {
			Expect(s.Run()).To(Equal(uint64(7)))

			entries := s.Entries()
			Expect(stampsOf(entries[0])).To(Equal(stamps{1, 3, 4}))
			Expect(stampsOf(entries[1])).To(Equal(stamps{2, 6, 7}))
		})

		It("should compute with the broadcast value", func() {
			s.Run()

			Expect(regFile.ReadFP(6)).To(Equal(2.5))
			Expect(regFile.ReadFP(2)).To(Equal(3.5))
			Expect(s.RegisterStatus().Tags()).To(HaveEach(tomasulo.NoTag))
		})
	})

	Context("three independent adds", func() {
		It("should issue in three consecutive cycles without stalls", func() {
			s := newScheduler(
				"ADD.D F0, F2, F4",
				"ADD.D F6, F8, F10",
				"ADD.D F12, F14, F16",
			)

			Expect(s.Run()).To(Equal(uint64(6)))

			entries := s.Entries()
			Expect(stampsOf(entries[0])).To(Equal(stamps{1, 3, 4}))
			Expect(stampsOf(entries[1])).To(Equal(stamps{2, 4, 5}))
			Expect(stampsOf(entries[2])).To(Equal(stamps{3, 5, 6}))
			Expect(s.Stats().IssueStalls).To(BeZero())
		})

		It("should make a fourth add wait a cycle after a station frees", func() {
			s := newScheduler(
				"ADD.D F0, F2, F4",
				"ADD.D F6, F8, F10",
				"ADD.D F12, F14, F16",
				"SUB.D F18, F20, F22",
			)

			s.Run()

			entries := s.Entries()
			Expect(entries[0].WriteResult).To(Equal(uint64(4)))
			Expect(entries[3].Issue).To(Equal(uint64(5)))
			Expect(s.Stats().Stalls(tomasulo.KindAdd)).To(Equal(uint64(1)))
			Expect(regFile.ReadFP(18)).To(Equal(0.0))
		})
	})

	Context("divide followed by a multiply with one multiplier station", func() {
		It("should stall issue until the station frees", func() {
			config.MultiplierStations = 1
			s := newScheduler(
				"DIV.D F0, F2, F4",
				"MUL.D F6, F8, F10",
			)

			Expect(s.Run()).To(Equal(uint64(54)))

			entries := s.Entries()
			Expect(stampsOf(entries[0])).To(Equal(stamps{1, 41, 42}))
			Expect(stampsOf(entries[1])).To(Equal(stamps{43, 53, 54}))

			stats := s.Stats()
			Expect(stats.Stalls(tomasulo.KindMult)).To(Equal(uint64(41)))
			Expect(stats.IssueStalls).To(Equal(uint64(41)))
		})
	})

	Context("store of a pending value", func() {
		var s *tomasulo.Scheduler

		BeforeEach(func() {
			memory.Write(16, 3.5)
			s = newScheduler(
				"L.D F6, 0(R1)",
				"S.D F6, 8(R1)",
			)
		})

		It("should hold the producer tag in the store buffer", func() {
			s.RunCycles(3)

			store := s.Pool().Station(tomasulo.MakeTag(tomasulo.KindStore, 0))
			Expect(store.Qk).To(Equal(tomasulo.MakeTag(tomasulo.KindLoad, 0)))
			Expect(store.Remaining).To(BeZero())
			Expect(store.Addr).To(Equal(int64(24)))
		})

		It("should write memory strictly after the broadcast", func() {
			s.RunCycles(4)
			Expect(s.Entries()[0].WriteResult).To(Equal(uint64(4)))
			Expect(s.Entries()[1].WriteResult).To(BeZero())
			Expect(memory.Read(24)).To(Equal(1.0))

			s.Advance()
			Expect(s.Entries()[1].WriteResult).To(Equal(uint64(5)))
			Expect(memory.Read(24)).To(Equal(3.5))
			Expect(s.Done()).To(BeTrue())
		})

		It("should not rename any register for the store", func() {
			s.RunCycles(2)
			Expect(s.RegisterStatus().Get(6)).To(Equal(tomasulo.MakeTag(tomasulo.KindLoad, 0)))
		})
	})

	Context("store of a ready value", func() {
		It("should write two cycles after issue", func() {
			regFile.WriteFP(4, 9)
			s := newScheduler("S.D F4, 0(R1)")

			Expect(s.Run()).To(Equal(uint64(3)))
			Expect(stampsOf(s.Entries()[0])).To(Equal(stamps{1, 2, 3}))
			Expect(memory.Read(16)).To(Equal(9.0))
			Expect(s.Stats().Broadcasts).To(BeZero())
		})

		It("should let two stores write in the same cycle", func() {
			s := newScheduler(
				"MUL.D F2, F4, F6",
				"S.D F2, 8(R0)",
				"S.D F2, 16(R0)",
			)

			s.Run()

			entries := s.Entries()
			Expect(entries[0].WriteResult).To(Equal(uint64(12)))
			Expect(entries[1].WriteResult).To(Equal(uint64(13)))
			Expect(entries[2].WriteResult).To(Equal(uint64(13)))
		})
	})

	Context("register renaming", func() {
		It("should let the newest producer own the register", func() {
			regFile.WriteFP(2, 3)
			regFile.WriteFP(4, 2)
			s := newScheduler(
				"MUL.D F0, F2, F4",
				"ADD.D F0, F2, F4",
				"ADD.D F6, F0, F2",
			)

			s.RunCycles(3)
			Expect(s.RegisterStatus().Get(0)).To(Equal(tomasulo.MakeTag(tomasulo.KindAdd, 0)))

			s.Run()
			Expect(regFile.ReadFP(0)).To(Equal(5.0))
			Expect(regFile.ReadFP(6)).To(Equal(8.0))
		})

		It("should not write a register renamed by a younger instruction", func() {
			regFile.WriteFP(2, 3)
			regFile.WriteFP(4, 2)
			s := newScheduler(
				"ADD.D F0, F2, F4",
				"MUL.D F0, F2, F4",
				"ADD.D F6, F0, F2",
			)

			s.RunCycles(4)
			Expect(s.Entries()[0].WriteResult).To(Equal(uint64(4)))
			Expect(regFile.ReadFP(0)).To(Equal(1.0))
			Expect(s.RegisterStatus().Get(0)).To(Equal(tomasulo.MakeTag(tomasulo.KindMult, 0)))

			s.Run()
			Expect(regFile.ReadFP(0)).To(Equal(6.0))
			Expect(regFile.ReadFP(6)).To(Equal(9.0))
		})

		It("should read a source before renaming the same destination", func() {
			regFile.WriteFP(4, 2)
			s := newScheduler(
				"ADD.D F2, F2, F4",
				"ADD.D F2, F2, F4",
			)

			s.Run()
			Expect(regFile.ReadFP(2)).To(Equal(5.0))
		})
	})

	Context("division by zero", func() {
		It("should propagate an infinite result", func() {
			regFile.WriteFP(4, 0)
			s := newScheduler(
				"DIV.D F0, F2, F4",
				"ADD.D F6, F0, F2",
			)

			s.Run()
			Expect(math.IsInf(regFile.ReadFP(0), 1)).To(BeTrue())
			Expect(math.IsInf(regFile.ReadFP(6), 1)).To(BeTrue())
			Expect(s.Stats().NonFinite).To(Equal(uint64(2)))
		})
	})

	Context("textbook sequence", func() {
		var s *tomasulo.Scheduler

		BeforeEach(func() {
			s = newScheduler(hennessyPatterson...)
		})

		It("should record the textbook stage cycles", func() {
			Expect(s.Run()).To(Equal(uint64(57)))

			want := []stamps{
				{1, 3, 4},
				{2, 4, 5},
				{3, 15, 16},
				{4, 7, 8},
				{5, 56, 57},
				{6, 10, 11},
			}
			for i, e := range s.Entries() {
				Expect(stampsOf(e)).To(Equal(want[i]), "instruction %d", i)
			}
		})

		It("should collect statistics", func() {
			s.Run()

			stats := s.Stats()
			Expect(stats.Cycles).To(Equal(uint64(57)))
			Expect(stats.Issued).To(Equal(uint64(6)))
			Expect(stats.Completed).To(Equal(uint64(6)))
			Expect(stats.Broadcasts).To(Equal(uint64(6)))
			Expect(stats.IssueStalls).To(BeZero())
			Expect(stats.CPI()).To(BeNumerically("~", 9.5))
		})

		It("should stop reporting progress once done", func() {
			Expect(s.RunCycles(10)).To(BeTrue())
			Expect(s.Cycle()).To(Equal(uint64(10)))
			Expect(s.NextToIssue()).To(Equal(6))

			Expect(s.RunCycles(100)).To(BeFalse())
			Expect(s.Cycle()).To(Equal(uint64(57)))
		})

		It("should leave the final register values", func() {
			s.Run()

			Expect(regFile.ReadFP(0)).To(Equal(1.0))
			Expect(regFile.ReadFP(2)).To(Equal(1.0))
			Expect(regFile.ReadFP(6)).To(Equal(1.0))
			Expect(regFile.ReadFP(8)).To(Equal(0.0))
			Expect(regFile.ReadFP(10)).To(Equal(1.0))
		})
	})

	Describe("invariants", func() {
		traces := map[string][]string{
			"textbook": hennessyPatterson,
			"mixed": {
				"L.D F0, 0(R1)",
				"L.D F2, 8(R1)",
				"L.D F4, 0(R0)",
				"MUL.D F6, F0, F2",
				"MUL.D F8, F6, F4",
				"DIV.D F10, F8, F2",
				"ADD.D F12, F10, F6",
				"SUB.D F14, F12, F0",
				"S.D F14, 0(R0)",
				"S.D F12, 8(R0)",
				"S.D F10, 16(R0)",
				"ADD.D F0, F0, F0",
				"ADD.D F0, F0, F0",
				"ADD.D F0, F0, F0",
				"ADD.D F0, F0, F0",
				"S.D F0, 24(R0)",
			},
		}

		for name, trace := range traces {
			trace := trace

			It("should hold on every cycle for the "+name+" trace", func() {
				s := newScheduler(trace...)
				freedAt := map[tomasulo.Tag]uint64{}

				for !s.Done() {
					before := s.Stations()
					s.Advance()
					cycle := s.Cycle()
					after := s.Stations()

					holders := map[int]tomasulo.Tag{}
					for i, st := range after {
						if before[i].Busy && (!st.Busy || st.Entry != before[i].Entry) {
							freedAt[st.Tag] = cycle
						}
						if !st.Busy {
							continue
						}

						other, dup := holders[st.Entry]
						Expect(dup).To(BeFalse(), "instruction %d held by %s and %s", st.Entry, other, st.Tag)
						holders[st.Entry] = st.Tag

						if s.Entries()[st.Entry].Issue == cycle {
							Expect(freedAt[st.Tag]).To(BeNumerically("<", cycle),
								"%s reused in the cycle it was freed", st.Tag)
						}
					}

					for reg, tag := range s.RegisterStatus().Tags() {
						if tag.IsNone() {
							continue
						}
						st := s.Pool().Station(tag)
						Expect(st).NotTo(BeNil())
						Expect(st.Busy).To(BeTrue(), "F%d waits on idle %s", reg, tag)
						Expect(tag.Kind).NotTo(Equal(tomasulo.KindStore))
					}
				}

				entries := s.Entries()
				for i, e := range entries {
					Expect(e.Issue).To(BeNumerically(">", 0))
					Expect(e.ExecComplete).To(BeNumerically(">", e.Issue), "instruction %d", i)
					Expect(e.WriteResult).To(BeNumerically(">", e.ExecComplete), "instruction %d", i)
					if i > 0 {
						Expect(e.Issue).To(BeNumerically(">", entries[i-1].Issue))
					}
				}
			})
		}
	})
})
