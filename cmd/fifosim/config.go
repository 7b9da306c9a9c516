package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sibexico/HexPager/simulator"
)

func newConfigCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or save the effective configuration (defaults, .env and environment)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := simulator.LoadConfigFromEnv()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if out != "" {
				return cfg.SaveToFile(out)
			}

			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the configuration to this JSON file")
	return cmd
}
