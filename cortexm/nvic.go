package cortexm

import "omibyte.io/exti/peripheral"

// NumInterrupts is the number of external interrupt lines the NVIC model
// provides.
const NumInterrupts = 16 * 32

// nvic mirrors the bit layout of the Cortex-M NVIC set/clear registers. The
// set-enable and clear-enable pairs collapse into one enable bank since the
// simulation has no write-one-to-clear semantics to preserve.
type nvic struct {
	ISER [16]uint32
	ISPR [16]uint32
	IABR [16]uint32
	IPR  [NumInterrupts]uint8
}

func bit(line peripheral.Line) (int, uint32) {
	return int(line >> 5), 1 << (line & 0x1F)
}

func set(bank *[16]uint32, line peripheral.Line) {
	i, m := bit(line)
	bank[i] |= m
}

func clr(bank *[16]uint32, line peripheral.Line) {
	i, m := bit(line)
	bank[i] &^= m
}

func isSet(bank *[16]uint32, line peripheral.Line) bool {
	i, m := bit(line)
	return bank[i]&m != 0
}

func valid(line peripheral.Line) bool {
	return line >= 0 && line < NumInterrupts
}

// IRQ is a handle to one line of a Core.
type IRQ struct {
	core *Core
	line peripheral.Line
}

func (i IRQ) Line() peripheral.Line {
	return i.line
}

func (i IRQ) EnableIRQ() {
	i.core.Unmask(i.line)
}

func (i IRQ) DisableIRQ() {
	i.core.Mask(i.line)
}

func (i IRQ) SetPriority(priority uint8) {
	i.core.SetPriority(i.line, priority)
}
