// Package firmware holds the two tasks of the program: the main loop in the
// foreground and the button interrupt handler in the background.
//
// They share exactly two things, both owned by Firmware: an event flag and
// the cell through which the button is handed to the handler. Every access
// to either goes through a critical section.
package firmware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"omibyte.io/exti/board"
	"omibyte.io/exti/bringup"
	"omibyte.io/exti/cortexm"
	"omibyte.io/exti/critical"
	"omibyte.io/exti/diag"
	"omibyte.io/exti/event"
	"omibyte.io/exti/halt"
	"omibyte.io/exti/peripheral"
	"omibyte.io/exti/resource"
)

// Reaction is the bounded side effect of the main loop for one observed
// event.
type Reaction func()

type Option func(*Firmware)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Firmware) {
		f.log = logger
	}
}

// WithReactionInside runs the reaction inside the critical section that
// clears the flag. By default it runs after the section is left.
func WithReactionInside() Option {
	return func(f *Firmware) {
		f.inside = true
	}
}

// WithWaitForInterrupt makes Run sleep until an interrupt is pending instead
// of spinning between polls.
func WithWaitForInterrupt() Option {
	return func(f *Firmware) {
		f.wfi = true
	}
}

func WithRecorder(rec diag.Recorder) Option {
	return func(f *Firmware) {
		f.rec = rec
	}
}

func WithReaction(fn Reaction) Option {
	return func(f *Firmware) {
		f.react = fn
	}
}

type Stats struct {
	Interrupts uint64
	Observed   uint64
	Reactions  uint64
}

type Firmware struct {
	board  *board.Board
	core   *cortexm.Core
	thread critical.Masker

	flag   event.Flag
	button resource.Cell[peripheral.InterruptSource]

	seq    *bringup.Sequencer
	react  Reaction
	inside bool
	wfi    bool
	rec    diag.Recorder
	log    *slog.Logger

	interrupts atomic.Uint64
	observed   atomic.Uint64
	reactions  atomic.Uint64
}

// New wires the tasks to b. Without WithReaction the main loop toggles the
// first LED of the board.
func New(b *board.Board, opts ...Option) *Firmware {
	f := &Firmware{
		board:  b,
		core:   b.Core,
		thread: b.Core.Thread(),
		rec:    diag.Nop{},
		log:    diag.Discard(),
	}
	if len(b.Leds) > 0 {
		f.react = Toggle(b.Leds[0])
	}
	for _, opt := range opts {
		opt(f)
	}
	f.seq = bringup.NewSequencer(bringup.Default(), f.log)
	return f
}

// Init brings up the interrupt path in the order the bring-up plan demands.
func (f *Firmware) Init() error {
	order, err := bringup.Default().Order()
	if err != nil {
		return err
	}
	for _, step := range order {
		if f.seq.Done(step) {
			continue
		}
		if err := f.Bringup(step); err != nil {
			return err
		}
	}
	f.log.Info("interrupt path up", "irq", f.board.Button.IRQ(), "edge", f.board.Button.Edge())
	return nil
}

// Bringup runs a single bring-up step. Steps whose prerequisites have not
// run are refused with bringup.ErrOrderViolation and have no effect.
func (f *Firmware) Bringup(step bringup.Step) error {
	button := f.board.Button
	var fn func() error
	switch step {
	case bringup.ConfigureTrigger:
		fn = func() error {
			return button.Source().ConfigureTrigger(button.Edge())
		}
	case bringup.EnableSource:
		fn = func() error {
			button.Source().EnableInterrupt()
			return nil
		}
	case bringup.InstallResource:
		fn = func() (err error) {
			critical.Do(f.thread, func(cs *critical.Section) {
				err = f.button.Install(cs, button.Source())
			})
			return err
		}
	case bringup.SetVector:
		fn = func() error {
			return f.core.SetVector(button.IRQ(), f.HandleInterrupt)
		}
	case bringup.Unmask:
		fn = func() error {
			f.board.Controller.Unmask(button.IRQ())
			return nil
		}
	default:
		return fmt.Errorf("%w: %s", bringup.ErrUnknownStep, step)
	}
	return f.seq.Do(step, fn)
}

// HandleInterrupt is the button interrupt handler. It acknowledges the
// source and signals the main loop.
func (f *Firmware) HandleInterrupt(ex *cortexm.Exception) {
	f.interrupts.Add(1)
	f.rec.Record(diag.Interrupt)
	critical.Do(ex, func(cs *critical.Section) {
		f.button.WithBorrowed(cs, func(src *peripheral.InterruptSource) {
			(*src).ClearInterruptPending()
		})
		f.flag.Set(cs)
	})
}

// Poll is one iteration of the main loop. It reports whether an event was
// observed. Events signaled since the previous Poll are observed once.
func (f *Firmware) Poll() bool {
	var had bool
	critical.Do(f.thread, func(cs *critical.Section) {
		had = f.flag.TestAndClear(cs)
		if had && f.inside {
			f.reaction()
		}
	})
	if !had {
		return false
	}
	f.observed.Add(1)
	f.rec.Record(diag.Observed)
	if !f.inside {
		f.reaction()
	}
	return true
}

func (f *Firmware) reaction() {
	if f.react == nil {
		return
	}
	f.react()
	f.reactions.Add(1)
	f.rec.Record(diag.Reaction)
}

// Run polls until ctx is done. On the target it never returns.
func (f *Firmware) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Poll() {
			continue
		}
		if !f.wfi {
			runtime.Gosched()
			continue
		}
		if err := f.idle(ctx); err != nil {
			return err
		}
	}
}

// idle waits for an interrupt with interrupts masked, so that a request
// arriving between the check and the wait still wakes the core. The handler
// runs when the section is left.
func (f *Firmware) idle(ctx context.Context) (err error) {
	critical.Do(f.thread, func(cs *critical.Section) {
		if f.flag.Status(cs) == event.Signaled {
			return
		}
		err = f.core.WaitForInterrupt(ctx)
	})
	return err
}

// Main initializes the interrupt path and runs the main loop. An
// initialization failure halts.
func (f *Firmware) Main(ctx context.Context) error {
	halt.Check(f.Init())
	return f.Run(ctx)
}

func (f *Firmware) Stats() Stats {
	return Stats{
		Interrupts: f.interrupts.Load(),
		Observed:   f.observed.Load(),
		Reactions:  f.reactions.Load(),
	}
}
