// Package gpio simulates a GPIO port and its external interrupt controller
// (EIC). Pins are handed out as Output and Input handles implementing the
// capabilities in package peripheral. The EIC latches edges into per-line
// flags and requests the routed NVIC line on the core.
package gpio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"omibyte.io/exti/cortexm"
	"omibyte.io/exti/peripheral"
)

// NumLines is the number of EIC lines. Pin n of any group maps to line n.
const NumLines = 16

var (
	ErrInvalidPin      = errors.New("gpio: invalid pin")
	ErrNoInterruptLine = errors.New("gpio: no interrupt line routed")
	ErrLineInUse       = errors.New("gpio: interrupt line used by another pin")
	ErrPinInUse        = errors.New("gpio: pin already configured")
)

type Direction int

const (
	Unused Direction = iota
	Input
	Output
)

type eic struct {
	config   [NumLines]peripheral.Edge
	owner    [NumLines]Pin
	intenset uint16
	intflag  uint16
	route    [NumLines]peripheral.Line
	routed   uint16
}

type Port struct {
	mu   sync.Mutex
	core *cortexm.Core
	log  *slog.Logger

	dir         [NumGroups][16]Direction
	out         [NumGroups]uint32
	in          [NumGroups]uint32
	transitions [NumGroups][16]int

	eic eic
}

func NewPort(core *cortexm.Core, logger *slog.Logger) *Port {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &Port{core: core, log: logger}
	for i := range p.eic.owner {
		p.eic.owner[i] = NoPin
	}
	return p
}

// Route connects EIC line to an NVIC interrupt. Several EIC lines may share
// one interrupt.
func (p *Port) Route(line int, irq peripheral.Line) error {
	if line < 0 || line >= NumLines {
		return fmt.Errorf("gpio: invalid EIC line %d", line)
	}

	p.mu.Lock()
	shared := false
	for i := 0; i < NumLines; i++ {
		if p.eic.routed&(1<<i) != 0 && p.eic.route[i] == irq {
			shared = true
		}
	}
	p.eic.route[line] = irq
	p.eic.routed |= 1 << line
	p.mu.Unlock()

	if !shared {
		p.core.Attach(irq, &request{port: p, irq: irq})
	}
	return nil
}

func (p *Port) claim(pin Pin, dir Direction) error {
	if !pin.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidPin, pin)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dir[pin.Group()][pin.Index()] != Unused {
		return fmt.Errorf("%w: %v", ErrPinInUse, pin)
	}
	p.dir[pin.Group()][pin.Index()] = dir
	return nil
}

func (p *Port) Output(pin Pin) (*OutputPin, error) {
	if err := p.claim(pin, Output); err != nil {
		return nil, err
	}
	return &OutputPin{port: p, pin: pin}, nil
}

func (p *Port) Input(pin Pin) (*InputPin, error) {
	if err := p.claim(pin, Input); err != nil {
		return nil, err
	}
	return &InputPin{port: p, pin: pin}, nil
}

// Level returns the output latch of an output pin or the sampled level of
// any other pin.
func (p *Port) Level(pin Pin) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level(pin)
}

func (p *Port) level(pin Pin) bool {
	if p.dir[pin.Group()][pin.Index()] == Output {
		return p.out[pin.Group()]&pin.mask() != 0
	}
	return p.in[pin.Group()]&pin.mask() != 0
}

// Transitions counts how often the level of pin changed.
func (p *Port) Transitions(pin Pin) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transitions[pin.Group()][pin.Index()]
}

// Drive sets the external level applied to pin. This is the hardware side of
// the simulation and may be called from any goroutine.
func (p *Port) Drive(pin Pin, high bool) {
	if !pin.Valid() {
		panic(fmt.Errorf("%w: %v", ErrInvalidPin, pin))
	}

	p.mu.Lock()
	g, m := pin.Group(), pin.mask()
	prev := p.in[g]&m != 0
	if prev == high {
		p.mu.Unlock()
		return
	}
	if high {
		p.in[g] |= m
	} else {
		p.in[g] &^= m
	}
	p.transitions[g][pin.Index()]++

	line := pin.Index()
	bit := uint16(1) << line
	latched := p.eic.owner[line] == pin &&
		p.eic.intenset&bit != 0 &&
		p.eic.config[line].Matches(prev, high)
	if latched {
		p.eic.intflag |= bit
	}
	irq, routed := p.eic.route[line], p.eic.routed&bit != 0
	p.mu.Unlock()

	if latched {
		p.log.Debug("edge latched", "pin", pin, "line", line)
		if routed {
			p.core.SetPending(irq)
		}
	}
}

// Pulse drives pin high and back low, one press of a button wired active
// high.
func (p *Port) Pulse(pin Pin) {
	p.Drive(pin, true)
	p.Drive(pin, false)
}

func (p *Port) setOutput(pin Pin, fn func(bool) bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, m := pin.Group(), pin.mask()
	prev := p.out[g]&m != 0
	next := fn(prev)
	if next == prev {
		return
	}
	if next {
		p.out[g] |= m
	} else {
		p.out[g] &^= m
	}
	p.transitions[g][pin.Index()]++
}

// request keeps an NVIC line asserted while any EIC line routed to it has an
// enabled flag set.
type request struct {
	port *Port
	irq  peripheral.Line
}

func (r *request) Asserted() bool {
	p := r.port
	p.mu.Lock()
	defer p.mu.Unlock()
	active := p.eic.intflag & p.eic.intenset & p.eic.routed
	for line := 0; line < NumLines; line++ {
		if active&(1<<line) != 0 && p.eic.route[line] == r.irq {
			return true
		}
	}
	return false
}
