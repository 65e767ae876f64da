package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omibyte.io/exti/cortexm"
	"omibyte.io/exti/peripheral"
)

const exti15_10 peripheral.Line = 40

func TestParsePin(t *testing.T) {
	tests := []struct {
		name    string
		pin     Pin
		invalid bool
	}{
		{"PB0", MakePin(1, 0), false},
		{"PC13", MakePin(2, 13), false},
		{"PK15", MakePin(10, 15), false},
		{"PA16", NoPin, true},
		{"PZ1", NoPin, true},
		{"B7", NoPin, true},
		{"PBx", NoPin, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pin, err := ParsePin(tc.name)
			if tc.invalid {
				assert.ErrorIs(t, err, ErrInvalidPin)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.pin, pin)
			assert.Equal(t, tc.name, pin.String())
		})
	}
	assert.Equal(t, "NoPin", NoPin.String())
}

func TestOutputPin(t *testing.T) {
	port := NewPort(cortexm.NewCore(), nil)
	led, err := port.Output(MakePin(1, 0))
	require.NoError(t, err)

	var out peripheral.DigitalOutput = led
	out.High()
	assert.True(t, led.Get())
	out.High()
	out.Toggle()
	assert.False(t, port.Level(led.Pin()))
	out.Low()
	led.Set(true)
	assert.Equal(t, 3, port.Transitions(led.Pin()))

	_, err = port.Output(MakePin(1, 0))
	assert.ErrorIs(t, err, ErrPinInUse)
	_, err = port.Input(NoPin)
	assert.ErrorIs(t, err, ErrInvalidPin)
}

func newButton(t *testing.T) (*cortexm.Core, *Port, *InputPin) {
	core := cortexm.NewCore()
	port := NewPort(core, nil)
	require.NoError(t, port.Route(13, exti15_10))
	button, err := port.Input(MakePin(2, 13))
	require.NoError(t, err)
	return core, port, button
}

func TestEdgeLatchesOnlyWhenEnabled(t *testing.T) {
	core, port, button := newButton(t)
	require.NoError(t, button.ConfigureTrigger(peripheral.RisingEdge))

	port.Pulse(button.Pin())
	assert.False(t, button.IsPending(), "interrupt not enabled at the EIC")
	assert.False(t, core.IsPending(exti15_10))

	button.EnableInterrupt()
	port.Drive(button.Pin(), true)
	assert.True(t, button.IsPending())
	assert.True(t, core.IsPending(exti15_10))
	assert.True(t, button.Get())

	button.ClearInterruptPending()
	port.Drive(button.Pin(), false)
	assert.False(t, button.IsPending(), "falling edge does not match")

	button.DisableInterrupt()
	port.Pulse(button.Pin())
	assert.False(t, button.IsPending())
}

func TestTriggerEdges(t *testing.T) {
	tests := []struct {
		edge peripheral.Edge
		rise bool
		fall bool
	}{
		{peripheral.RisingEdge, true, false},
		{peripheral.FallingEdge, false, true},
		{peripheral.BothEdges, true, true},
		{peripheral.NoEdge, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.edge.String(), func(t *testing.T) {
			_, port, button := newButton(t)
			require.NoError(t, button.ConfigureTrigger(tc.edge))
			button.EnableInterrupt()

			port.Drive(button.Pin(), true)
			assert.Equal(t, tc.rise, button.IsPending())
			button.ClearInterruptPending()

			port.Drive(button.Pin(), false)
			assert.Equal(t, tc.fall, button.IsPending())
		})
	}
}

func TestConfigureTriggerErrors(t *testing.T) {
	core := cortexm.NewCore()
	port := NewPort(core, nil)

	unrouted, err := port.Input(MakePin(0, 3))
	require.NoError(t, err)
	assert.ErrorIs(t, unrouted.ConfigureTrigger(peripheral.RisingEdge), ErrNoInterruptLine)
	_, err = unrouted.IRQ()
	assert.ErrorIs(t, err, ErrNoInterruptLine)

	require.NoError(t, port.Route(13, exti15_10))
	a, _ := port.Input(MakePin(2, 13))
	b, _ := port.Input(MakePin(3, 13))
	require.NoError(t, a.ConfigureTrigger(peripheral.RisingEdge))
	assert.ErrorIs(t, b.ConfigureTrigger(peripheral.RisingEdge), ErrLineInUse)
	assert.ErrorIs(t, a.ConfigureTrigger(peripheral.Edge(9)), peripheral.ErrInvalidEdge)

	irq, err := a.IRQ()
	require.NoError(t, err)
	assert.Equal(t, exti15_10, irq)

	assert.Error(t, port.Route(NumLines, exti15_10))
}

func TestUnacknowledgedLineStaysAsserted(t *testing.T) {
	core, port, button := newButton(t)
	require.NoError(t, button.ConfigureTrigger(peripheral.RisingEdge))
	button.EnableInterrupt()

	entries := 0
	require.NoError(t, core.SetVector(exti15_10, func(*cortexm.Exception) {
		entries++
		if entries == 2 {
			button.ClearInterruptPending()
		}
	}))
	core.Unmask(exti15_10)

	port.Pulse(button.Pin())
	assert.Equal(t, 2, entries)
	assert.False(t, core.IsPending(exti15_10))
}

func TestSharedInterruptAttachesOnce(t *testing.T) {
	core, port, button := newButton(t)
	require.NoError(t, port.Route(12, exti15_10))
	require.NoError(t, button.ConfigureTrigger(peripheral.RisingEdge))
	button.EnableInterrupt()

	entries := 0
	require.NoError(t, core.SetVector(exti15_10, func(*cortexm.Exception) {
		entries++
		button.ClearInterruptPending()
	}))
	core.Unmask(exti15_10)

	port.Pulse(button.Pin())
	assert.Equal(t, 1, entries)
}
