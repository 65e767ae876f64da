package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"omibyte.io/exti/board"
)

var (
	boardsFile string

	boardsCmd = &cobra.Command{
		Use:   "boards",
		Short: "List the supported boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			boards := board.All()
			if boardsFile != "" {
				var err error
				if boards, err = board.Load(boardsFile); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BOARD\tCHIPS\tLEDS\tBUTTON\tEDGE\tIRQ")
			for _, info := range boards {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
					info.Name,
					strings.Join(info.Chips, ","),
					strings.Join(info.Leds, ","),
					info.Button.Pin,
					info.Button.Edge,
					info.Button.IRQ)
			}
			return w.Flush()
		},
	}
)

func init() {
	boardsCmd.Flags().StringVar(&boardsFile, "board-file", "", "YAML board catalogue to list instead of the built in one")
}
