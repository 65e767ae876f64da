// Package cortexm simulates the parts of a single Cortex-M core that the
// foreground/background model depends on: the global interrupt mask, the NVIC
// enable/pending/active banks, the vector table, and WFI.
//
// Exactly one context executes at a time. The foreground thread holds the
// execution lock while it is inside a critical section; a handler holds it
// for its whole run. Hardware stimulus may come from any goroutine and only
// touches the pending bank; the handler is taken either right away by the
// stimulating goroutine, or by whichever context next releases the lock.
package cortexm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/bits"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"omibyte.io/exti/peripheral"
)

var (
	ErrInvalidInterrupt = errors.New("cortexm: invalid interrupt line")
	ErrVectorInUse      = errors.New("cortexm: vector already in use")
)

// Handler is an interrupt service routine.
type Handler func(ex *Exception)

// Source is the peripheral behind a line. While Asserted reports true the
// line is pended again each time its handler returns, as with a level
// triggered request that nobody acknowledged.
type Source interface {
	Asserted() bool
}

type Option func(*Core)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) {
		c.log = logger
	}
}

type Core struct {
	// cpu is held by whichever context executes with interrupts masked.
	cpu sync.Mutex

	mu      sync.Mutex
	regs    nvic
	vectors map[peripheral.Line]Handler
	sources map[peripheral.Line][]Source

	wake   chan struct{}
	thread Thread
	log    *slog.Logger

	taken atomic.Uint64
}

func NewCore(opts ...Option) *Core {
	c := &Core{
		vectors: map[peripheral.Line]Handler{},
		sources: map[peripheral.Line][]Source{},
		wake:    make(chan struct{}, 1),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	c.thread.core = c
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Thread returns the masker of the foreground context.
func (c *Core) Thread() *Thread {
	return &c.thread
}

func (c *Core) IRQ(line peripheral.Line) IRQ {
	mustBeValid(line)
	return IRQ{core: c, line: line}
}

// SetVector installs the handler for line. Installing a different handler
// over an existing one fails.
func (c *Core) SetVector(line peripheral.Line, handler Handler) error {
	if !valid(line) {
		return fmt.Errorf("%w: %d", ErrInvalidInterrupt, line)
	}
	if handler == nil {
		return fmt.Errorf("cortexm: nil handler for line %d", line)
	}

	c.mu.Lock()
	if _, ok := c.vectors[line]; ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrVectorInUse, line)
	}
	c.vectors[line] = handler
	c.mu.Unlock()

	c.log.Debug("vector installed", "irq", line)
	c.deliver()
	return nil
}

// Vectors returns the lines that have a handler, in ascending order.
func (c *Core) Vectors() []peripheral.Line {
	c.mu.Lock()
	lines := maps.Keys(c.vectors)
	c.mu.Unlock()
	slices.Sort(lines)
	return lines
}

// Attach registers src as a requester of line.
func (c *Core) Attach(line peripheral.Line, src Source) {
	mustBeValid(line)
	c.mu.Lock()
	c.sources[line] = append(c.sources[line], src)
	c.mu.Unlock()
}

func (c *Core) Unmask(line peripheral.Line) {
	mustBeValid(line)
	c.mu.Lock()
	set(&c.regs.ISER, line)
	c.mu.Unlock()

	c.log.Debug("irq unmasked", "irq", line)
	c.signal()
	c.deliver()
}

func (c *Core) Mask(line peripheral.Line) {
	mustBeValid(line)
	c.mu.Lock()
	clr(&c.regs.ISER, line)
	c.mu.Unlock()
	c.log.Debug("irq masked", "irq", line)
}

// SetPending latches a request on line. If the line is enabled and the core
// is free the handler runs before SetPending returns.
func (c *Core) SetPending(line peripheral.Line) {
	mustBeValid(line)
	c.mu.Lock()
	set(&c.regs.ISPR, line)
	c.mu.Unlock()

	c.signal()
	c.deliver()
}

func (c *Core) ClearPending(line peripheral.Line) {
	mustBeValid(line)
	c.mu.Lock()
	clr(&c.regs.ISPR, line)
	c.mu.Unlock()
}

func (c *Core) IsPending(line peripheral.Line) bool {
	return c.test(&c.regs.ISPR, line)
}

func (c *Core) IsEnabled(line peripheral.Line) bool {
	return c.test(&c.regs.ISER, line)
}

func (c *Core) IsActive(line peripheral.Line) bool {
	return c.test(&c.regs.IABR, line)
}

func (c *Core) SetPriority(line peripheral.Line, priority uint8) {
	mustBeValid(line)
	c.mu.Lock()
	c.regs.IPR[line] = priority
	c.mu.Unlock()
}

func (c *Core) Priority(line peripheral.Line) uint8 {
	mustBeValid(line)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs.IPR[line]
}

// Exceptions returns the number of handler invocations so far.
func (c *Core) Exceptions() uint64 {
	return c.taken.Load()
}

// WaitForInterrupt blocks until an enabled line is pending or ctx is done.
// Like the WFI instruction it wakes even while interrupts are masked, which
// is how it is meant to be used: check for work inside a critical section,
// wait, then leave the section to take the interrupt.
func (c *Core) WaitForInterrupt(ctx context.Context) error {
	for {
		if c.wakeable() {
			return nil
		}
		select {
		case <-c.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Core) test(bank *[16]uint32, line peripheral.Line) bool {
	mustBeValid(line)
	c.mu.Lock()
	defer c.mu.Unlock()
	return isSet(bank, line)
}

func (c *Core) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Core) wakeable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.regs.ISPR {
		if c.regs.ISPR[i]&c.regs.ISER[i] != 0 {
			return true
		}
	}
	return false
}

// next returns the lowest numbered line that is enabled, pending, not active
// and has a handler. c.mu must be held.
func (c *Core) next() (peripheral.Line, Handler, bool) {
	for i := range c.regs.ISPR {
		ready := c.regs.ISPR[i] & c.regs.ISER[i] &^ c.regs.IABR[i]
		for ready != 0 {
			n := bits.TrailingZeros32(ready)
			line := peripheral.Line(i*32 + n)
			if h, ok := c.vectors[line]; ok {
				return line, h, true
			}
			ready &^= 1 << n
		}
	}
	return 0, nil, false
}

func (c *Core) ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _, ok := c.next()
	return ok
}

// deliver takes pending interrupts if no other context holds the core. Every
// context that releases the core calls deliver afterwards, so a request that
// found the core busy is picked up by the holder on its way out.
func (c *Core) deliver() {
	for c.ready() {
		if !c.cpu.TryLock() {
			return
		}
		func() {
			defer c.cpu.Unlock()
			c.run()
		}()
	}
}

// run executes handlers until nothing is ready. c.cpu must be held.
func (c *Core) run() {
	for {
		c.mu.Lock()
		line, h, ok := c.next()
		if !ok {
			c.mu.Unlock()
			return
		}
		clr(&c.regs.ISPR, line)
		set(&c.regs.IABR, line)
		c.mu.Unlock()

		c.exec(line, h)
	}
}

func (c *Core) exec(line peripheral.Line, h Handler) {
	defer func() {
		c.mu.Lock()
		clr(&c.regs.IABR, line)
		for _, src := range c.sources[line] {
			if src.Asserted() {
				set(&c.regs.ISPR, line)
				break
			}
		}
		c.mu.Unlock()
	}()

	c.taken.Add(1)
	c.log.Debug("irq taken", "irq", line)
	h(&Exception{core: c, line: line})
}

func mustBeValid(line peripheral.Line) {
	if !valid(line) {
		panic(fmt.Errorf("%w: %d", ErrInvalidInterrupt, line))
	}
}
