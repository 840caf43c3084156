// Package core drives a Tomasulo scheduler from an akita simulation engine.
// Each engine tick advances the scheduler by one clock cycle.
package core

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// HookPosCycleEnd is invoked after every simulated cycle. The hook item is
// the *tomasulo.Scheduler that was advanced.
var HookPosCycleEnd = &sim.HookPos{Name: "CycleEnd"}

// Core is a ticking component that owns one scheduler.
type Core struct {
	*sim.TickingComponent

	scheduler *tomasulo.Scheduler
}

// NewCore creates a core that advances the scheduler once per tick of the
// given frequency.
func NewCore(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	scheduler *tomasulo.Scheduler,
) *Core {
	c := &Core{scheduler: scheduler}
	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)

	return c
}

// Tick advances the scheduler by one cycle. It returns false once every
// instruction has written its result, which stops further ticks.
func (c *Core) Tick() bool {
	if c.scheduler.Done() {
		return false
	}

	c.scheduler.Advance()

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCycleEnd,
		Item:   c.scheduler,
	})

	return !c.scheduler.Done()
}

// Run schedules the first tick and runs the engine until the program drains.
func (c *Core) Run() error {
	if !c.scheduler.Done() {
		c.TickLater()
	}

	return c.Engine.Run()
}

// Scheduler returns the scheduler driven by the core.
func (c *Core) Scheduler() *tomasulo.Scheduler {
	return c.scheduler
}

// Stats returns the scheduler statistics.
func (c *Core) Stats() tomasulo.Statistics {
	return c.scheduler.Stats()
}

// ElapsedCycles converts the engine time into cycles of the core clock.
func (c *Core) ElapsedCycles() uint64 {
	return c.Freq.Cycle(c.CurrentTime())
}
