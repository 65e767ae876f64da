package peripheral

// Line identifies one interrupt line at the interrupt controller.
type Line int16

type Interrupt interface {
	EnableIRQ()
	DisableIRQ()
	SetPriority(priority uint8)
}

// InterruptController masks and unmasks lines by their identifier.
type InterruptController interface {
	Unmask(line Line)
	Mask(line Line)
}

// InterruptSource is a peripheral that can latch an interrupt condition.
type InterruptSource interface {
	ConfigureTrigger(edge Edge) error
	EnableInterrupt()
	ClearInterruptPending()
	IsPending() bool
}
