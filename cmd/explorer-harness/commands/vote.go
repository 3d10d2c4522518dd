package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tendermint/explorer-harness/libs/cli"
	"github.com/tendermint/explorer-harness/rpc/rest"
)

// MakeVoteCommand returns the commands reading vote state from a node.
func MakeVoteCommand() *cobra.Command {
	var (
		host   string
		format string
	)
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Read the active vote plans of a node",
	}
	cmd.PersistentFlags().StringVar(&host, "host", "127.0.0.1:8443", "node REST address, host:port or URL")
	cmd.PersistentFlags().StringVar(&format, cli.OutputFlag, "json", "output format: json | yaml")

	cmd.AddCommand(&cobra.Command{
		Use:   "committees",
		Short: "Print the committee members of the active vote plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rest.New(host)
			if err != nil {
				return err
			}
			ids, err := c.Committees(cmd.Context())
			if err != nil {
				return err
			}
			return writeFormatted(cmd.OutOrStdout(), format, ids)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "active-plans",
		Short: "Print the active vote plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rest.New(host)
			if err != nil {
				return err
			}
			plans, err := c.ActivePlans(cmd.Context())
			if err != nil {
				return err
			}
			return writeFormatted(cmd.OutOrStdout(), format, plans)
		},
	})
	return cmd
}

func writeFormatted(w io.Writer, format string, v interface{}) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		bs, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(bs))
		return err
	default:
		return fmt.Errorf("unsupported output format %q: want json or yaml", format)
	}
}
