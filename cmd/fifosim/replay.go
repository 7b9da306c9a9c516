package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sibexico/HexPager/swaplog"
)

func newReplayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <swap-log>",
		Short: "Print the swap-outs recorded in a binary swap log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			header, records, err := swaplog.ReadLogFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s (format v%d, compression %s): %d swap-outs\n",
				header.RunID, header.Version, header.Compression, len(records))
			for _, rec := range records {
				fmt.Fprintf(out, "Step %d: swapped out page %d from frame %d\n", rec.Step, rec.Page, rec.Frame)
			}
			return nil
		},
	}
}
