// Command fifosim simulates demand paging with FIFO page replacement.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "fifosim",
		Short: "Demand-paged virtual memory simulator with FIFO replacement",
		Long: `fifosim processes a sequence of page references against a fixed pool of
physical frames, reporting hits, page faults and FIFO evictions, and records
every swap-out in a text or binary swap log.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCommand(),
		newReplayCommand(),
		newConfigCommand(),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
