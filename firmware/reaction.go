package firmware

import "omibyte.io/exti/peripheral"

// Toggle flips led on every event.
func Toggle(led peripheral.DigitalOutput) Reaction {
	return func() {
		led.Toggle()
	}
}

// Counter shows the number of events in binary across leds, least
// significant bit first. It wraps around when all of them are lit.
func Counter(leds ...peripheral.DigitalOutput) Reaction {
	var n uint
	return func() {
		n++
		for i, led := range leds {
			if n&(1<<i) != 0 {
				led.High()
			} else {
				led.Low()
			}
		}
	}
}
