package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"omibyte.io/exti/board"
	"omibyte.io/exti/diag"
	"omibyte.io/exti/firmware"
	"omibyte.io/exti/halt"
	"omibyte.io/exti/peripheral"
)

var (
	runOpts = struct {
		board     string
		boardFile string
		presses   int
		interval  time.Duration
		level     string
		json      bool
		inside    bool
		wfi       bool
		reaction  string
		trace     int
	}{}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the firmware on a simulated board",
		Long:  "Run the firmware on a simulated board and press its user button a number of times",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := diag.BuildLogger(os.Stderr, runOpts.level, runOpts.json)
			halt.SetLogger(logger)
			halt.SetHandler(func(error) {
				os.Exit(2)
			})

			boards := board.All()
			if runOpts.boardFile != "" {
				var err error
				if boards, err = board.Load(runOpts.boardFile); err != nil {
					return err
				}
			}
			info, err := boards.Find(runOpts.board)
			if err != nil {
				return err
			}

			dev, err := board.NewDevice(info, logger)
			if err != nil {
				return err
			}
			b, err := dev.Take()
			halt.Check(err)

			trace := diag.NewTrace(runOpts.trace)
			opts := []firmware.Option{
				firmware.WithLogger(logger),
				firmware.WithRecorder(trace),
			}
			if runOpts.inside {
				opts = append(opts, firmware.WithReactionInside())
			}
			if runOpts.wfi {
				opts = append(opts, firmware.WithWaitForInterrupt())
			}
			switch runOpts.reaction {
			case "toggle":
			case "counter":
				leds := make([]peripheral.DigitalOutput, len(b.Leds))
				for i, led := range b.Leds {
					leds[i] = led
				}
				opts = append(opts, firmware.WithReaction(firmware.Counter(leds...)))
			default:
				return fmt.Errorf("unknown reaction %q", runOpts.reaction)
			}
			fw := firmware.New(b, opts...)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			go func() {
				defer cancel()
				for i := 0; i < runOpts.presses; i++ {
					select {
					case <-time.After(runOpts.interval):
					case <-ctx.Done():
						return
					}
					trace.Record(diag.Edge)
					dev.Press()
				}
				// Give the main loop a chance to observe the last press.
				time.Sleep(runOpts.interval)
			}()

			if err := fw.Main(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			stats := fw.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "board %s: %d presses, %d interrupts, %d events observed, %d reactions\n",
				info.Name, trace.Count(diag.Edge), stats.Interrupts, stats.Observed, stats.Reactions)
			for _, led := range b.Leds {
				fmt.Fprintf(cmd.OutOrStdout(), "  led %v: %v\n", led.Pin(), onOff(led.IsOn()))
			}
			return nil
		},
	}
)

func init() {
	runCmd.Flags().StringVarP(&runOpts.board, "board", "b", "nucleo-f767zi", "board or chip name")
	runCmd.Flags().StringVar(&runOpts.boardFile, "board-file", "", "YAML board catalogue to use instead of the built in one")
	runCmd.Flags().IntVarP(&runOpts.presses, "presses", "n", 5, "number of button presses")
	runCmd.Flags().DurationVarP(&runOpts.interval, "interval", "i", 100*time.Millisecond, "time between presses")
	runCmd.Flags().StringVarP(&runOpts.level, "level", "l", "info", "log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runOpts.json, "json", false, "log as JSON")
	runCmd.Flags().BoolVar(&runOpts.inside, "reaction-inside", false, "react inside the critical section")
	runCmd.Flags().BoolVar(&runOpts.wfi, "wfi", false, "wait for interrupt between polls")
	runCmd.Flags().StringVarP(&runOpts.reaction, "reaction", "r", "toggle", "reaction to an event (=toggle, =counter)")
	runCmd.Flags().IntVar(&runOpts.trace, "trace", 64, "number of trace records kept")
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
