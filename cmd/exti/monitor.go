package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"omibyte.io/exti/monitor"
)

var (
	monitorOpts = struct {
		port string
		baud int
		list bool
	}{}

	monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Print the log output of a board",
		Long:  "Print the log output a board writes to its serial port",
		RunE: func(cmd *cobra.Command, args []string) error {
			if monitorOpts.list {
				ports, err := monitor.Ports()
				if err != nil {
					return err
				}
				for _, port := range ports {
					fmt.Fprintln(cmd.OutOrStdout(), port)
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			err := monitor.Run(ctx, monitor.Config{
				Port:     monitorOpts.port,
				BaudRate: monitorOpts.baud,
			}, cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
)

func init() {
	monitorCmd.Flags().StringVarP(&monitorOpts.port, "port", "p", "", "serial port (default: first port found)")
	monitorCmd.Flags().IntVar(&monitorOpts.baud, "baud", monitor.DefaultBaudRate, "baud rate")
	monitorCmd.Flags().BoolVar(&monitorOpts.list, "list", false, "list serial ports and exit")
}
