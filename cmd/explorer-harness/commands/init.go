package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/explorer-harness/config"
	tmos "github.com/tendermint/explorer-harness/libs/os"
)

// MakeInitCommand returns the command writing a config.toml under --home.
func MakeInitCommand(conf *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config.toml under the home directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(conf)
			if err != nil {
				return err
			}
			path := conf.ConfigFile()
			if tmos.FileExists(path) {
				logger.Info("Found config file", "path", path)
				return nil
			}
			if err := tmos.EnsureDir(conf.RootDir, 0700); err != nil {
				return err
			}
			if err := config.WriteConfigFile(conf.RootDir, conf); err != nil {
				return err
			}
			logger.Info("Generated config file", "path", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
