package board

import (
	"omibyte.io/exti/cortexm"
	"omibyte.io/exti/gpio"
	"omibyte.io/exti/peripheral"
)

// Role is the closed set of pin roles a board hands out: *Led or *Button.
type Role interface {
	role()
	Pin() gpio.Pin
}

type Board struct {
	Name       string
	Leds       []*Led
	Button     *Button
	Controller peripheral.InterruptController
	Core       *cortexm.Core
}

// Roles lists every pin the board owns, LEDs first.
func (b *Board) Roles() []Role {
	roles := make([]Role, 0, len(b.Leds)+1)
	for _, led := range b.Leds {
		roles = append(roles, led)
	}
	if b.Button != nil {
		roles = append(roles, b.Button)
	}
	return roles
}

var _ peripheral.DigitalOutput = (*Led)(nil)

// Led is an indicator driven by a push-pull output.
type Led struct {
	out *gpio.OutputPin
	pin gpio.Pin
}

func (*Led) role() {}

func (l *Led) Pin() gpio.Pin { return l.pin }
func (l *Led) On()           { l.out.High() }
func (l *Led) Off()          { l.out.Low() }
func (l *Led) High()         { l.out.High() }
func (l *Led) Low()          { l.out.Low() }
func (l *Led) Toggle()       { l.out.Toggle() }
func (l *Led) IsOn() bool    { return l.out.Get() }

// Button is the user button. Its input is the interrupt source handed to the
// interrupt handler.
type Button struct {
	in   *gpio.InputPin
	edge peripheral.Edge
	irq  peripheral.Line
}

func (*Button) role() {}

func (b *Button) Pin() gpio.Pin { return b.in.Pin() }

// Pressed samples the pin. Boards with a falling trigger are wired active
// low.
func (b *Button) Pressed() bool {
	if b.edge == peripheral.FallingEdge {
		return !b.in.Get()
	}
	return b.in.Get()
}

func (b *Button) Edge() peripheral.Edge {
	return b.edge
}

func (b *Button) IRQ() peripheral.Line {
	return b.irq
}

// Source returns the button as an interrupt source.
func (b *Button) Source() peripheral.InterruptSource {
	return b.in
}
