package cortexm

import (
	"omibyte.io/exti/critical"
	"omibyte.io/exti/peripheral"
)

// Thread is the critical.Masker of the foreground context. There is one per
// Core and it must only be used from the goroutine running the main loop.
type Thread struct {
	core  *Core
	depth int
}

func (t *Thread) DisableInterrupts() critical.State {
	if t.depth > 0 {
		t.depth++
		return critical.Masked
	}

	// Blocks while a handler runs: the foreground is preempted.
	t.core.cpu.Lock()
	t.depth = 1
	return critical.Enabled
}

func (t *Thread) EnableInterrupts(state critical.State) {
	if t.depth == 0 {
		panic("cortexm: interrupts enabled twice")
	}
	t.depth--
	if state == critical.Masked {
		return
	}
	if t.depth != 0 {
		panic("cortexm: unbalanced critical section")
	}

	t.core.cpu.Unlock()

	// Anything latched while masked is taken now.
	t.core.deliver()
}

// Masked reports whether the foreground currently runs with interrupts
// masked.
func (t *Thread) Masked() bool {
	return t.depth > 0
}

// Exception is the critical.Masker handed to an interrupt handler. The core
// already excludes the foreground while a handler runs, so entering a section
// here only tracks nesting.
type Exception struct {
	core  *Core
	line  peripheral.Line
	depth int
}

func (ex *Exception) DisableInterrupts() critical.State {
	ex.depth++
	if ex.depth > 1 {
		return critical.Masked
	}
	return critical.Enabled
}

func (ex *Exception) EnableInterrupts(state critical.State) {
	if ex.depth == 0 {
		panic("cortexm: interrupts enabled twice")
	}
	ex.depth--
}

// Line returns the interrupt line being serviced.
func (ex *Exception) Line() peripheral.Line {
	return ex.line
}
