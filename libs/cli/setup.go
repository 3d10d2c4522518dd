// Package cli wires cobra commands to viper: flags, environment variables and
// the config file under the home directory all land in the global viper.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	HomeFlag   = "home"
	TraceFlag  = "trace"
	OutputFlag = "output-format"
)

// PrepareBaseCmd adds the --home and --trace flags to cmd and loads flags,
// environment (envPrefix_*) and <home>/config.toml into viper before any
// subcommand runs.
func PrepareBaseCmd(cmd *cobra.Command, envPrefix, defaultHome string) *cobra.Command {
	cobra.OnInitialize(func() { InitEnv(envPrefix) })
	cmd.PersistentFlags().StringP(HomeFlag, "", defaultHome, "directory for config and data")
	cmd.PersistentFlags().Bool(TraceFlag, false, "print every wrapped cause of an error")
	cmd.PersistentPreRunE = concatCobraCmdFuncs(BindFlagsLoadViper, cmd.PersistentPreRunE)
	return cmd
}

// InitEnv makes viper read PREFIX_* environment variables. Dots and dashes
// of keys map to underscores: explorer.logs-dir is PREFIX_EXPLORER_LOGS_DIR.
func InitEnv(prefix string) {
	viper.SetEnvPrefix(strings.ToUpper(prefix))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

type cobraCmdFunc func(cmd *cobra.Command, args []string) error

// Returns a single function that calls each argument function in sequence
// RunE, PreRunE, PersistentPreRunE, etc. all have this same signature
func concatCobraCmdFuncs(fs ...cobraCmdFunc) cobraCmdFunc {
	return func(cmd *cobra.Command, args []string) error {
		for _, f := range fs {
			if f != nil {
				if err := f(cmd, args); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// BindFlagsLoadViper binds all flags and reads the config file into viper.
// A missing config file is not an error.
func BindFlagsLoadViper(cmd *cobra.Command, args []string) error {
	// cmd.Flags() includes flags from this command and all persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	homeDir := viper.GetString(HomeFlag)
	viper.Set(HomeFlag, homeDir)
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(homeDir)
	viper.AddConfigPath(filepath.Join(homeDir, "config"))

	var notFound viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return err
	}
	return nil
}

// ErrorMessage formats a command error for the terminal. With trace set,
// every error in the wrap chain gets its own line, outermost first.
func ErrorMessage(err error, trace bool) string {
	if !trace {
		return fmt.Sprintf("ERROR: %v", err)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "ERROR: %v", err)
	for i, cause := 1, errors.Unwrap(err); cause != nil; i, cause = i+1, errors.Unwrap(cause) {
		fmt.Fprintf(&sb, "\n  %d: %T: %v", i, cause, cause)
	}
	return sb.String()
}
