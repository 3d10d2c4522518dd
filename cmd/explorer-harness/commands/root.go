package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tendermint/explorer-harness/config"
	"github.com/tendermint/explorer-harness/libs/cli"
	"github.com/tendermint/explorer-harness/libs/log"
)

// DefaultHome is the --home used when none is given.
var DefaultHome = os.ExpandEnv(filepath.Join("$HOME", config.DefaultHarnessDir))

// ParseConfig applies viper (flags, environment, config file) on top of conf
// and validates the result.
func ParseConfig(conf *config.Config) (*config.Config, error) {
	conf.Override(viper.GetViper())
	conf.SetRoot(viper.GetString(cli.HomeFlag))

	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	return conf, nil
}

// RootCommand constructs the root command-line entry point of the harness.
func RootCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "explorer-harness",
		Short:         "Launch, probe and query a blockchain explorer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == VersionCmd.Name() {
				return nil
			}
			pconf, err := ParseConfig(conf)
			if err != nil {
				return err
			}
			*conf = *pconf
			return nil
		},
	}
	cmd.PersistentFlags().String("log-level", conf.LogLevel, "log level")
	cmd.PersistentFlags().String("log-format", conf.LogFormat, "log format: plain | json")
	return cli.PrepareBaseCmd(cmd, config.EnvPrefix, DefaultHome)
}

// newLogger returns the logger configured by conf, writing to stderr so
// that command output stays machine readable.
func newLogger(conf *config.Config) (log.Logger, error) {
	return log.NewDefaultLogger(conf.LogFormat, conf.LogLevel)
}
