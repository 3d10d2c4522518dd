package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/explorer-harness/config"
)

// MakeConfigCommand returns the command editing config.toml in place.
func MakeConfigCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit config.toml",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the path of config.toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), conf.ConfigFile())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a key of config.toml, keeping its comments",
		Long: `Set a key of config.toml, keeping its comments.

KEY is dotted, e.g. explorer.logs-dir. VALUE is a TOML literal: strings
must be quoted, e.g.

  explorer-harness config set explorer.logs-dir '"/tmp/explorer-logs"'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.SetValue(conf.ConfigFile(), args[0], args[1])
		},
	})
	return cmd
}
