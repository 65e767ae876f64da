package firmware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type led struct {
	on      bool
	toggles int
}

func (l *led) High()   { l.on = true }
func (l *led) Low()    { l.on = false }
func (l *led) Toggle() { l.on = !l.on; l.toggles++ }

func TestToggle(t *testing.T) {
	l := &led{}
	react := Toggle(l)
	react()
	assert.True(t, l.on)
	react()
	assert.False(t, l.on)
	assert.Equal(t, 2, l.toggles)
}

func TestCounter(t *testing.T) {
	leds := []*led{{}, {}, {}}
	react := Counter(leds[0], leds[1], leds[2])

	lit := func() (bits [3]bool) {
		for i, l := range leds {
			bits[i] = l.on
		}
		return
	}

	tests := []struct {
		events   int
		expected [3]bool
	}{
		{1, [3]bool{true, false, false}},
		{2, [3]bool{false, true, false}},
		{3, [3]bool{true, true, false}},
		{7, [3]bool{true, true, true}},
		{8, [3]bool{false, false, false}},
	}

	n := 0
	for _, tc := range tests {
		for n < tc.events {
			react()
			n++
		}
		assert.Equal(t, tc.expected, lit(), "after %d events", tc.events)
	}
}
