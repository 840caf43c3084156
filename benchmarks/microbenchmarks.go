package benchmarks

import (
	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/timing/latency"
)

// GetMicrobenchmarks returns the standard set of trace kernels. Each kernel
// isolates one scheduling behavior.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		independentAdds(),
		adderPressure(),
		loadUse(),
		divMulStructural(),
		storePending(),
		textbook(),
	}
}

// GetCoreBenchmarks returns a minimal set of kernels for quick validation.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		loadUse(),
		storePending(),
		textbook(),
	}
}

// baseSetup presets the integer base register used by memory kernels.
func baseSetup(regFile *emu.RegFile, _ *emu.Memory) {
	regFile.WriteInt(1, 16)
}

// 1. Independent adds - one issue per cycle, no renaming stalls
func independentAdds() Benchmark {
	return Benchmark{
		Name:        "independent_adds",
		Description: "3 independent adds - issue throughput of the adder pool",
		Trace: []string{
			"ADD.D F2, F4, F6",
			"SUB.D F8, F10, F12",
			"ADD.D F14, F16, F18",
		},
		ExpectedCycles: 6,
	}
}

// 2. Adder pressure - a fourth add waits for a free adder station
func adderPressure() Benchmark {
	return Benchmark{
		Name:        "adder_pressure",
		Description: "4 independent adds on 3 adder stations - structural stall",
		Trace: []string{
			"ADD.D F2, F4, F6",
			"SUB.D F8, F10, F12",
			"ADD.D F14, F16, F18",
			"SUB.D F20, F22, F24",
		},
		ExpectedCycles: 8,
	}
}

// 3. Load use - an add consumes the load through the result bus
func loadUse() Benchmark {
	return Benchmark{
		Name:        "load_use",
		Description: "L.D then dependent ADD.D - broadcast wake-up latency",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			baseSetup(regFile, memory)
			memory.Write(16, 2.5)
		},
		Trace: []string{
			"L.D F2, 0(R1)",
			"ADD.D F4, F2, F2",
		},
		ExpectedCycles: 7,
	}
}

// 4. Divide then multiply on a single multiplier station
func divMulStructural() Benchmark {
	return Benchmark{
		Name:        "div_mul_structural",
		Description: "DIV.D then MUL.D with one multiplier station - long structural stall",
		Configure: func(config *latency.TimingConfig) {
			config.MultiplierStations = 1
		},
		Trace: []string{
			"DIV.D F2, F4, F6",
			"MUL.D F8, F10, F12",
		},
		ExpectedCycles: 54,
	}
}

// 5. Store of a value still being loaded
func storePending() Benchmark {
	return Benchmark{
		Name:        "store_pending",
		Description: "S.D waits on the producer tag of an earlier L.D",
		Setup:       baseSetup,
		Trace: []string{
			"L.D F2, 0(R1)",
			"S.D F2, 8(R1)",
		},
		ExpectedCycles: 5,
	}
}

// 6. The Hennessy-Patterson textbook sequence
func textbook() Benchmark {
	return Benchmark{
		Name:        "textbook",
		Description: "Hennessy-Patterson example - renaming, WAR and WAW hazards",
		Setup:       baseSetup,
		Trace: []string{
			"L.D F6, 34(R2)",
			"L.D F2, 45(R3)",
			"MUL.D F0, F2, F4",
			"SUB.D F8, F6, F2",
			"DIV.D F10, F0, F6",
			"ADD.D F6, F8, F2",
		},
		ExpectedCycles: 57,
	}
}
