// Package event implements the pending-event flag shared by the foreground
// loop and an interrupt handler.
package event

import "omibyte.io/exti/critical"

type Status bool

const (
	Idle     Status = false
	Signaled Status = true
)

func (s Status) String() string {
	if s == Signaled {
		return "signaled"
	}
	return "idle"
}

// Flag records that an event occurred and has not been consumed yet.
//
// Signals coalesce: any number of Set calls between two TestAndClear calls are
// observed as one event. The flag is not a queue. A burst of edges between two
// polls of the main loop still reports that something happened, but not how
// many times.
//
// The zero value is Idle.
type Flag struct {
	v critical.Mutex[Status]
}

// Set marks the flag Signaled. It is called from the interrupt handler.
func (f *Flag) Set(cs *critical.Section) {
	*f.v.Borrow(cs) = Signaled
}

// TestAndClear reports whether the flag was Signaled and leaves it Idle. The
// read and the clear happen under the same section so a Set cannot slip in
// between them.
func (f *Flag) TestAndClear(cs *critical.Section) bool {
	v := f.v.Borrow(cs)
	had := *v
	*v = Idle
	return had == Signaled
}

func (f *Flag) Status(cs *critical.Section) Status {
	return *f.v.Borrow(cs)
}
