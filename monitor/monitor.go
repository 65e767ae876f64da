// Package monitor relays the log output of a board running the firmware from
// its serial port to a writer.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

const DefaultBaudRate = 115200

var ErrNoPort = errors.New("monitor: no serial port found")

type Config struct {
	// Port is the device name. Empty selects the first port found.
	Port     string
	BaudRate int
}

// Ports lists the serial ports of the host.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

// Open opens the port described by cfg in 8N1 mode.
func Open(cfg Config) (serial.Port, string, error) {
	name := cfg.Port
	if name == "" {
		ports, err := Ports()
		if err != nil {
			return nil, "", err
		}
		if len(ports) == 0 {
			return nil, "", ErrNoPort
		}
		name = ports[0]
	}
	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}

	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, "", fmt.Errorf("monitor: %s: %w", name, err)
	}
	return port, name, nil
}

// Run opens the port and copies its lines to w until ctx is done or the port
// is closed.
func Run(ctx context.Context, cfg Config, w io.Writer) error {
	port, _, err := Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	_, err = Copy(ctx, port, w)
	return err
}

// Copy copies r to w line by line and returns the number of lines copied. It
// returns nil when r reaches EOF and ctx.Err() when ctx is done first.
func Copy(ctx context.Context, r io.Reader, w io.Writer) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case err := <-errc:
			return n, err
		case line := <-lines:
			if _, err := w.Write(append(line, '\n')); err != nil {
				return n, err
			}
			n++
		}
	}
}
