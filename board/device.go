// Package board describes development boards and hands out their peripherals.
//
// A Device is the simulated chip: one core and one GPIO port wired the way the
// board description says. Its peripherals can be taken exactly once, as a
// Board holding the LEDs and the user button.
package board

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"omibyte.io/exti/cortexm"
	"omibyte.io/exti/diag"
	"omibyte.io/exti/gpio"
	"omibyte.io/exti/peripheral"
)

type Device struct {
	Info Info
	Core *cortexm.Core
	Port *gpio.Port

	button gpio.Pin
	taken  atomic.Bool
	log    *slog.Logger
}

func NewDevice(info Info, logger *slog.Logger) (*Device, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = diag.Discard()
	}
	logger = logger.With("board", info.Name)

	core := cortexm.NewCore(cortexm.WithLogger(logger))
	port := gpio.NewPort(core, logger)

	button, _ := gpio.ParsePin(info.Button.Pin)
	if err := port.Route(button.Index(), peripheral.Line(info.Button.IRQ)); err != nil {
		return nil, err
	}

	return &Device{
		Info:   info,
		Core:   core,
		Port:   port,
		button: button,
		log:    logger,
	}, nil
}

// Take returns the board peripherals. Only the first call succeeds.
func (d *Device) Take() (*Board, error) {
	if !d.taken.CompareAndSwap(false, true) {
		return nil, ErrPeripheralsTaken
	}

	b := &Board{
		Name:       d.Info.Name,
		Controller: d.Core,
		Core:       d.Core,
	}
	for _, name := range d.Info.Leds {
		pin, _ := gpio.ParsePin(name)
		out, err := d.Port.Output(pin)
		if err != nil {
			return nil, fmt.Errorf("board: led %s: %w", name, err)
		}
		b.Leds = append(b.Leds, &Led{out: out, pin: pin})
	}

	in, err := d.Port.Input(d.button)
	if err != nil {
		return nil, fmt.Errorf("board: button: %w", err)
	}
	if d.activeLow() {
		// Pulled up while released.
		d.Port.Drive(d.button, true)
	}
	edge, _ := peripheral.ParseEdge(d.Info.Button.Edge)
	b.Button = &Button{
		in:   in,
		edge: edge,
		irq:  peripheral.Line(d.Info.Button.IRQ),
	}

	d.log.Info("peripherals taken", "leds", len(b.Leds), "button", d.button, "irq", b.Button.irq)
	return b, nil
}

// Press simulates one press and release of the user button.
func (d *Device) Press() {
	if d.activeLow() {
		d.Port.Drive(d.button, false)
		d.Port.Drive(d.button, true)
		return
	}
	d.Port.Pulse(d.button)
}

func (d *Device) activeLow() bool {
	return d.Info.Button.Edge == peripheral.FallingEdge.String()
}

func (d *Device) ButtonPin() gpio.Pin {
	return d.button
}
