package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "exti",
		Short: "Run the button interrupt firmware on a simulated board",
		Long: `exti runs the foreground/background button firmware against a simulated
Cortex-M core and GPIO port, lists the supported boards and monitors the log
output of a real board over its serial port.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(boardsCmd)
	rootCmd.AddCommand(monitorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
