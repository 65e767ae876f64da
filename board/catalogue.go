package board

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"omibyte.io/exti/cortexm"
	"omibyte.io/exti/gpio"
	"omibyte.io/exti/peripheral"
)

//go:embed boards.yaml
var rawBoards []byte

var boards Catalogue

var (
	ErrUnknownBoard     = errors.New("board: unknown board")
	ErrInvalidBoard     = errors.New("board: invalid board description")
	ErrPeripheralsTaken = errors.New("board: peripherals already taken")
)

type Catalogue []Info

type Info struct {
	Name   string     `yaml:"name"`
	Chips  []string   `yaml:"chips"`
	Leds   []string   `yaml:"leds"`
	Button ButtonInfo `yaml:"button"`
}

type ButtonInfo struct {
	Pin  string `yaml:"pin"`
	Edge string `yaml:"edge"`
	IRQ  int    `yaml:"irq"`
}

// All returns the built in boards.
func All() Catalogue {
	return boards
}

func Parse(b []byte) (Catalogue, error) {
	var c struct {
		Elements Catalogue `yaml:"boards"`
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	var errs []error
	for _, info := range c.Elements {
		if err := info.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c.Elements, nil
}

// Load reads a board catalogue from a YAML file.
func Load(path string) (Catalogue, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Find looks a board up by name or by chip.
func (c Catalogue) Find(name string) (Info, error) {
	name = strings.ToLower(name)
	i := slices.IndexFunc(c, func(info Info) bool {
		return info.Name == name || slices.Contains(info.Chips, name)
	})
	if i < 0 {
		return Info{}, fmt.Errorf("%w: %s", ErrUnknownBoard, name)
	}
	return c[i], nil
}

func (c Catalogue) Names() []string {
	names := make([]string, len(c))
	for i, info := range c {
		names[i] = info.Name
	}
	slices.Sort(names)
	return names
}

func (info Info) Validate() error {
	if info.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidBoard)
	}
	for _, led := range info.Leds {
		if _, err := gpio.ParsePin(led); err != nil {
			return fmt.Errorf("%w: %s: led: %w", ErrInvalidBoard, info.Name, err)
		}
	}
	if _, err := gpio.ParsePin(info.Button.Pin); err != nil {
		return fmt.Errorf("%w: %s: button: %w", ErrInvalidBoard, info.Name, err)
	}
	if _, err := peripheral.ParseEdge(info.Button.Edge); err != nil {
		return fmt.Errorf("%w: %s: button: %w", ErrInvalidBoard, info.Name, err)
	}
	if info.Button.IRQ < 0 || info.Button.IRQ >= cortexm.NumInterrupts {
		return fmt.Errorf("%w: %s: irq %d out of range", ErrInvalidBoard, info.Name, info.Button.IRQ)
	}
	return nil
}

func init() {
	var err error
	if boards, err = Parse(rawBoards); err != nil {
		panic(err)
	}
}
