// Package resource implements a one-shot ownership hand-off from the
// foreground context to an interrupt handler.
package resource

import (
	"errors"

	"omibyte.io/exti/critical"
)

var ErrAlreadyInstalled = errors.New("resource: already installed")

type slot uint8

const (
	empty slot = iota
	installed
	borrowed
)

type cell[T any] struct {
	state slot
	value T
}

// Cell holds at most one value. It starts empty, is filled once by Install
// before the interrupt line is unmasked, and is never emptied afterwards.
// After Install the value belongs to the interrupt handler, which reaches it
// through WithBorrowed.
type Cell[T any] struct {
	m critical.Mutex[cell[T]]
}

// Install moves v into the cell. A second call leaves the first value in
// place and returns ErrAlreadyInstalled.
func (c *Cell[T]) Install(cs *critical.Section, v T) error {
	s := c.m.Borrow(cs)
	if s.state != empty {
		return ErrAlreadyInstalled
	}
	s.value = v
	s.state = installed
	return nil
}

// WithBorrowed calls fn with a pointer to the installed value and reports
// whether it did. On an empty cell it does nothing. The pointer is valid only
// for the duration of fn.
func (c *Cell[T]) WithBorrowed(cs *critical.Section, fn func(v *T)) bool {
	s := c.m.Borrow(cs)
	switch s.state {
	case empty:
		return false
	case borrowed:
		panic("resource: already borrowed")
	}

	s.state = borrowed
	defer func() { s.state = installed }()
	fn(&s.value)
	return true
}

func (c *Cell[T]) Installed(cs *critical.Section) bool {
	return c.m.Borrow(cs).state != empty
}
