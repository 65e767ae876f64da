package critical

// Mutex holds a value that may only be reached from inside a critical
// section. It does no locking of its own: holding a Section is the lock.
type Mutex[T any] struct {
	v T
}

func NewMutex[T any](v T) *Mutex[T] {
	return &Mutex[T]{v: v}
}

// Borrow returns a pointer to the protected value. The pointer must not be
// retained past the end of cs.
func (m *Mutex[T]) Borrow(cs *Section) *T {
	if !cs.Active() {
		panic("critical: borrow outside of a critical section")
	}
	return &m.v
}
