package peripheral

type Edge int

const (
	NoEdge Edge = iota
	RisingEdge
	FallingEdge
	BothEdges
)

func (e Edge) String() string {
	switch e {
	case NoEdge:
		return "none"
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	case BothEdges:
		return "both"
	default:
		return "invalid"
	}
}

// ParseEdge converts the names returned by Edge.String back to an Edge.
func ParseEdge(s string) (Edge, error) {
	switch s {
	case "", "none":
		return NoEdge, nil
	case "rising":
		return RisingEdge, nil
	case "falling":
		return FallingEdge, nil
	case "both":
		return BothEdges, nil
	}
	return NoEdge, ErrInvalidEdge
}

// Matches reports whether a transition from prev to next arms a line
// configured for edge e.
func (e Edge) Matches(prev, next bool) bool {
	if prev == next {
		return false
	}
	switch e {
	case RisingEdge:
		return next
	case FallingEdge:
		return !next
	case BothEdges:
		return true
	}
	return false
}

// DigitalOutput drives a pin. Implementations cannot fail.
type DigitalOutput interface {
	High()
	Low()
	Toggle()
}

type DigitalInput interface {
	Get() bool
}

// Pin is an input pin that can also raise interrupts.
type Pin interface {
	DigitalInput
	InterruptSource
}
