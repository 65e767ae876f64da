package gpio

import (
	"fmt"

	"omibyte.io/exti/peripheral"
)

var (
	_ peripheral.DigitalOutput = (*OutputPin)(nil)
	_ peripheral.Pin           = (*InputPin)(nil)
)

// OutputPin is a push-pull output.
type OutputPin struct {
	port *Port
	pin  Pin
}

func (o *OutputPin) Pin() Pin {
	return o.pin
}

func (o *OutputPin) High() {
	o.port.setOutput(o.pin, func(bool) bool { return true })
}

func (o *OutputPin) Low() {
	o.port.setOutput(o.pin, func(bool) bool { return false })
}

func (o *OutputPin) Toggle() {
	o.port.setOutput(o.pin, func(prev bool) bool { return !prev })
}

func (o *OutputPin) Set(on bool) {
	o.port.setOutput(o.pin, func(bool) bool { return on })
}

func (o *OutputPin) Get() bool {
	return o.port.Level(o.pin)
}

// InputPin is a floating input that can be used as an interrupt source on
// the EIC line matching its index.
type InputPin struct {
	port *Port
	pin  Pin
}

func (i *InputPin) Pin() Pin {
	return i.pin
}

func (i *InputPin) Get() bool {
	return i.port.Level(i.pin)
}

// ConfigureTrigger selects the edge that latches the EIC line of this pin and
// connects the line to the pin.
func (i *InputPin) ConfigureTrigger(edge peripheral.Edge) error {
	if edge < peripheral.NoEdge || edge > peripheral.BothEdges {
		return peripheral.ErrInvalidEdge
	}

	p := i.port
	line := i.pin.Index()
	p.mu.Lock()
	defer p.mu.Unlock()
	if owner := p.eic.owner[line]; owner != NoPin && owner != i.pin {
		return fmt.Errorf("%w: line %d owned by %v", ErrLineInUse, line, owner)
	}
	if p.eic.routed&(1<<line) == 0 {
		return fmt.Errorf("%w: line %d", ErrNoInterruptLine, line)
	}
	p.eic.owner[line] = i.pin
	p.eic.config[line] = edge
	return nil
}

func (i *InputPin) EnableInterrupt() {
	p := i.port
	p.mu.Lock()
	p.eic.intenset |= 1 << i.pin.Index()
	p.mu.Unlock()
}

func (i *InputPin) DisableInterrupt() {
	p := i.port
	p.mu.Lock()
	p.eic.intenset &^= 1 << i.pin.Index()
	p.mu.Unlock()
}

func (i *InputPin) ClearInterruptPending() {
	p := i.port
	p.mu.Lock()
	p.eic.intflag &^= 1 << i.pin.Index()
	p.mu.Unlock()
}

func (i *InputPin) IsPending() bool {
	p := i.port
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eic.intflag&(1<<i.pin.Index()) != 0
}

// IRQ returns the NVIC line this pin's EIC line is routed to.
func (i *InputPin) IRQ() (peripheral.Line, error) {
	p := i.port
	line := i.pin.Index()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.eic.routed&(1<<line) == 0 {
		return 0, fmt.Errorf("%w: line %d", ErrNoInterruptLine, line)
	}
	return p.eic.route[line], nil
}
