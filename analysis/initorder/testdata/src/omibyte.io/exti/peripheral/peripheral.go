package peripheral

type Line int16

type Edge int

const RisingEdge Edge = 1

type InterruptController interface {
	Unmask(line Line)
	Mask(line Line)
}

type InterruptSource interface {
	ConfigureTrigger(edge Edge) error
	EnableInterrupt()
	ClearInterruptPending()
	IsPending() bool
}
