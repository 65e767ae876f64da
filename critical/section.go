// Package critical provides scoped critical sections on a single core.
//
// A critical section masks the interrupt source for its duration. Sections
// nest: each one records the interrupt state it found at entry and restores
// exactly that state on exit, so leaving an inner section never re-enables
// interrupts while an outer section is still open.
package critical

// State is the interrupt enable state saved by DisableInterrupts.
type State uint32

const (
	Enabled State = iota
	Masked
)

// Masker is the execution context a section runs in. Each context (the
// foreground thread, an exception) has its own Masker.
type Masker interface {
	DisableInterrupts() State
	EnableInterrupts(state State)
}

// Section is the token proving that the holder runs with interrupts masked.
type Section struct {
	m      Masker
	state  State
	active bool
}

// Enter masks interrupts and returns the token for the new section. The
// caller must call Exit exactly once.
func Enter(m Masker) *Section {
	return &Section{
		m:      m,
		state:  m.DisableInterrupts(),
		active: true,
	}
}

// Exit restores the state found at entry.
func (cs *Section) Exit() {
	if !cs.active {
		panic("critical: exit of inactive section")
	}
	cs.active = false
	cs.m.EnableInterrupts(cs.state)
}

// Active reports whether cs has not been exited yet.
func (cs *Section) Active() bool {
	return cs != nil && cs.active
}

// Outermost reports whether leaving cs re-enables interrupts.
func (cs *Section) Outermost() bool {
	return cs.state == Enabled
}

// Do runs fn inside a critical section. The section is exited on every path
// out of fn, including a panic.
func Do(m Masker, fn func(cs *Section)) {
	cs := Enter(m)
	defer cs.Exit()
	fn(cs)
}

// Value runs fn inside a critical section and returns its result.
func Value[T any](m Masker, fn func(cs *Section) T) T {
	cs := Enter(m)
	defer cs.Exit()
	return fn(cs)
}
