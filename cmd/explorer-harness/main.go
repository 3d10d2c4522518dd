package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/tendermint/explorer-harness/cmd/explorer-harness/commands"
	"github.com/tendermint/explorer-harness/config"
	"github.com/tendermint/explorer-harness/libs/cli"
)

func main() {
	conf := config.DefaultConfig()

	rcmd := commands.RootCommand(conf)
	rcmd.AddCommand(
		commands.MakeInitCommand(conf),
		commands.MakeConfigCommand(conf),
		commands.MakeLaunchCommand(conf),
		commands.MakeProbeCommand(conf),
		commands.MakeQueryCommand(conf),
		commands.MakeSchemaCommand(conf),
		commands.MakeVoteCommand(),
		commands.VersionCmd,
	)

	if err := rcmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorMessage(err, viper.GetBool(cli.TraceFlag)))
		os.Exit(1)
	}
}
