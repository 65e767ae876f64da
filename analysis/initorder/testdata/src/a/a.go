package a

import (
	"omibyte.io/exti/peripheral"
	"omibyte.io/exti/resource"
)

const irq peripheral.Line = 40

var cell resource.Cell[peripheral.InterruptSource]

type installer struct{}

func (installer) Install(cs *resource.Section, v peripheral.InterruptSource) error { return nil }

func good(ctl peripheral.InterruptController, src peripheral.InterruptSource) {
	src.ConfigureTrigger(peripheral.RisingEdge)
	src.EnableInterrupt()
	cell.Install(nil, src)
	ctl.Unmask(irq)
}

func unmaskFirst(ctl peripheral.InterruptController, src peripheral.InterruptSource) {
	src.ConfigureTrigger(peripheral.RisingEdge)
	ctl.Unmask(irq) // want "unmask before install-resource"
	cell.Install(nil, src)
}

func installFirst(ctl peripheral.InterruptController, src peripheral.InterruptSource) {
	cell.Install(nil, src) // want "install-resource before configure-trigger"
	src.ConfigureTrigger(peripheral.RisingEdge)
	ctl.Unmask(irq)
}

func closures(ctl peripheral.InterruptController, src peripheral.InterruptSource) {
	unmask := func() {
		ctl.Unmask(irq) // want "unmask before install-resource"
	}
	install := func() {
		cell.Install(nil, src)
	}
	unmask()
	install()
}

// Install on anything but a resource cell is not a bring-up step.
func otherInstall(ctl peripheral.InterruptController, src peripheral.InterruptSource) {
	ctl.Unmask(irq)
	installer{}.Install(nil, src)
}

// Steps split across functions are not checked.
func onlyUnmask(ctl peripheral.InterruptController) {
	ctl.Unmask(irq)
}
