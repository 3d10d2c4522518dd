package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tendermint/explorer-harness/config"
	"github.com/tendermint/explorer-harness/rpc/graphql/client"
	"github.com/tendermint/explorer-harness/test/explorer"
)

// MakeQueryCommand returns the command running a catalog query by name.
func MakeQueryCommand(conf *config.Config) *cobra.Command {
	var (
		address string
		vars    []string
		list    bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "query NAME",
		Short: "Run a named explorer query and print the response",
		Long: `Run a named explorer query and print the response envelope as JSON.

Variables are given as --var name=value. Values that parse as JSON are sent
as such, anything else is sent as a string. Use --list to print the names of
the known queries.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, name := range explorer.QueryNames() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			logger, err := newLogger(conf)
			if err != nil {
				return err
			}

			doc, err := explorer.Lookup(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s (known: %s)", err, args[0], strings.Join(explorer.QueryNames(), ", "))
			}
			variables, err := parseVars(vars)
			if err != nil {
				return err
			}

			opts := []client.Option{
				client.WithLogger(logger),
				client.WithOutput(cmd.ErrOrStderr()),
				client.WithVerbose(verbose),
			}
			if conf.Explorer.QueryTimeout > 0 {
				opts = append(opts, client.WithTimeout(conf.Explorer.QueryTimeout))
			}
			c, err := client.New(address, opts...)
			if err != nil {
				return err
			}

			body := client.QueryBody{
				OperationName: doc.OperationName(),
				Query:         doc.Text(),
				Variables:     variables,
			}
			env, err := c.Run(cmd.Context(), body)
			if err != nil {
				return err
			}
			bs, err := json.MarshalIndent(env, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bs))
			return env.Err()
		},
	}
	cmd.Flags().StringVar(&address, "address", "127.0.0.1:3030", "explorer address, host:port or URL")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "query variable as name=value, repeatable")
	cmd.Flags().BoolVar(&list, "list", false, "list the known queries")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "print the query and raw response to stderr")
	return cmd
}

func parseVars(kvs []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(kvs))
	for _, kv := range kvs {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q: want name=value", kv)
		}
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[name] = v
	}
	return out, nil
}

func hasScheme(address string) bool {
	return strings.Contains(address, "://")
}
