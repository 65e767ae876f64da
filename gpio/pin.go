package gpio

import (
	"fmt"
	"strconv"
)

// NumGroups is the number of port groups, PA through PK.
const NumGroups = 11

// Pin packs a port group and a pin index as group<<8 | index.
type Pin uint16

const NoPin Pin = 0xFFFF

func MakePin(group, index int) Pin {
	return Pin(group<<8 | index)
}

func (p Pin) Group() int {
	return int(p >> 8)
}

func (p Pin) Index() int {
	return int(p & 0xFF)
}

func (p Pin) Valid() bool {
	return p.Group() < NumGroups && p.Index() < 16
}

func (p Pin) mask() uint32 {
	return 1 << p.Index()
}

func (p Pin) String() string {
	if !p.Valid() {
		return "NoPin"
	}
	return fmt.Sprintf("P%c%d", 'A'+p.Group(), p.Index())
}

// ParsePin parses names such as "PB0" or "PC13".
func ParsePin(s string) (Pin, error) {
	if len(s) < 3 || s[0] != 'P' || s[1] < 'A' || s[1] >= 'A'+NumGroups {
		return NoPin, fmt.Errorf("%w: %q", ErrInvalidPin, s)
	}
	index, err := strconv.Atoi(s[2:])
	if err != nil || index < 0 || index > 15 {
		return NoPin, fmt.Errorf("%w: %q", ErrInvalidPin, s)
	}
	return MakePin(int(s[1]-'A'), index), nil
}
