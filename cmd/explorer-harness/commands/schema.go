package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/explorer-harness/config"
	"github.com/tendermint/explorer-harness/test/explorer"
)

// ErrSchemaDrift is returned by schema check --fail-on-drift.
var ErrSchemaDrift = errors.New("explorer schema drifted")

// MakeSchemaCommand returns the schema drift commands.
func MakeSchemaCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Explorer GraphQL schema commands",
	}

	var (
		expected    string
		failOnDrift bool
	)
	check := &cobra.Command{
		Use:   "check ACTUAL",
		Short: "Compare a dumped schema with the checked-in one, updating it on drift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(conf)
			if err != nil {
				return err
			}
			if expected == "" {
				expected = conf.Schema.Expected
			}
			drift, err := explorer.CompareSchemaWith(logger, args[0], expected)
			if err != nil {
				return err
			}
			if !drift {
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema updated: %s\n", expected)
			if failOnDrift {
				return ErrSchemaDrift
			}
			return nil
		},
	}
	check.Flags().StringVar(&expected, "expected", "", "checked-in schema (default schema.expected)")
	check.Flags().BoolVar(&failOnDrift, "fail-on-drift", false, "exit non-zero when the schema was updated")
	cmd.AddCommand(check)
	return cmd
}
