package tomasulo

import (
	"fmt"

	"github.com/sarchlab/tomasim/timing/latency"
)

// Operand is a source value captured at issue: either a value (Tag is
// NoTag) or the tag of the station that will produce it.
type Operand struct {
	Value float64
	Tag   Tag
}

// Station is a reservation station, load buffer, or store buffer.
type Station struct {
	// Tag is the station's own name, broadcast with its result.
	Tag Tag

	// Busy is set while an instruction is bound to the station.
	Busy bool

	// Vj, Vk hold operand values; each is valid only while Qj, Qk is NoTag.
	// For memory ops Vj is the base register value and Vk the store data.
	Vj, Vk float64
	Qj, Qk Tag

	// Addr holds the offset at issue and the effective address once
	// execution completes (memory ops only).
	Addr int64

	// Remaining is the number of execute cycles left.
	Remaining uint64

	// Entry is the index of the bound instruction.
	Entry int

	// GuardCycle is the last cycle the station wrote its result or captured
	// a broadcast operand. A station is neither reallocated nor allowed to
	// execute in its guard cycle.
	GuardCycle uint64
}

// IsMemory returns true for load and store buffers.
func (s *Station) IsMemory() bool {
	return s.Tag.Kind.IsMemory()
}

// OperandsReady reports whether the operands the station needs before
// counting down are resolved. Memory ops only need the base address.
func (s *Station) OperandsReady() bool {
	if s.IsMemory() {
		return s.Qj.IsNone()
	}
	return s.Qj.IsNone() && s.Qk.IsNone()
}

// Pool holds every reservation station, grouped by kind.
type Pool struct {
	stations []*Station
	byKind   [numKinds][]*Station
}

// NewPool creates the stations described by the configuration. Stations are
// ordered adders, multipliers, load buffers, store buffers.
func NewPool(config *latency.TimingConfig) *Pool {
	p := &Pool{}

	capacities := map[StationKind]int{
		KindAdd:   config.AdderStations,
		KindMult:  config.MultiplierStations,
		KindLoad:  config.LoadBuffers,
		KindStore: config.StoreBuffers,
	}

	for _, kind := range StationKinds {
		for i := 0; i < capacities[kind]; i++ {
			s := &Station{Tag: MakeTag(kind, i)}
			p.stations = append(p.stations, s)
			p.byKind[kind] = append(p.byKind[kind], s)
		}
	}

	return p
}

// Stations returns all stations in scan order.
func (p *Pool) Stations() []*Station {
	return p.stations
}

// Capacity returns the number of stations of a kind.
func (p *Pool) Capacity(kind StationKind) int {
	if kind >= numKinds {
		return 0
	}
	return len(p.byKind[kind])
}

// Station returns the station with the given tag, or nil.
func (p *Pool) Station(tag Tag) *Station {
	if tag.IsNone() || tag.Kind >= numKinds {
		return nil
	}
	stations := p.byKind[tag.Kind]
	if tag.Index < 0 || tag.Index >= len(stations) {
		return nil
	}
	return stations[tag.Index]
}

// FindFree returns the first station of the kind that is idle and was not
// vacated in the given cycle. It returns false when the pool is exhausted,
// in which case issue must stall.
func (p *Pool) FindFree(kind StationKind, cycle uint64) (Tag, bool) {
	if kind >= numKinds {
		return NoTag, false
	}

	for _, s := range p.byKind[kind] {
		if s.GuardCycle == cycle {
			continue
		}
		if !s.Busy {
			return s.Tag, true
		}
	}

	return NoTag, false
}

// BusyCount returns the number of busy stations of a kind.
func (p *Pool) BusyCount(kind StationKind) int {
	if kind >= numKinds {
		return 0
	}

	n := 0
	for _, s := range p.byKind[kind] {
		if s.Busy {
			n++
		}
	}
	return n
}

// Bind marks the station busy with the given instruction, latency and
// operands. addr is the immediate offset for memory ops.
func (p *Pool) Bind(tag Tag, entry int, latency uint64, j, k Operand, addr int64) *Station {
	s := p.Station(tag)
	if s == nil {
		panic(fmt.Sprintf("no reservation station %q", tag))
	}
	if s.Busy {
		panic(fmt.Sprintf("reservation station %s is already busy", tag))
	}

	s.Busy = true
	s.Entry = entry
	s.Remaining = latency
	s.Addr = addr
	s.Vj, s.Qj = j.Value, j.Tag
	s.Vk, s.Qk = k.Value, k.Tag

	return s
}
