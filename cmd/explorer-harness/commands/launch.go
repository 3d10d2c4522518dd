package commands

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tendermint/explorer-harness/config"
	"github.com/tendermint/explorer-harness/internal/bootstrap"
	"github.com/tendermint/explorer-harness/internal/instrument"
	"github.com/tendermint/explorer-harness/internal/process"
	tmnet "github.com/tendermint/explorer-harness/libs/net"
	tmos "github.com/tendermint/explorer-harness/libs/os"
)

// MakeLaunchCommand returns the command running an explorer until it is
// interrupted.
func MakeLaunchCommand(conf *config.Config) *cobra.Command {
	var (
		nodeAddr  string
		extraArgs []string
	)
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch an explorer against a node and keep it running",
		Long: `Launch an explorer against a node, wait for it to answer and print its
URL. The explorer runs until SIGINT or SIGTERM. If it dies on its own, its
output is written to explorer.log under explorer.logs-dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(conf)
			if err != nil {
				return err
			}
			if nodeAddr == "" {
				return errors.New("--node is required")
			}

			listen, err := tmnet.FreeAddress(conf.Explorer.ListenHost)
			if err != nil {
				return err
			}

			var stopping, failed atomic.Bool
			handle, err := process.Launch(process.Config{
				Binary:        conf.Explorer.Binary,
				NodeAddress:   nodeAddr,
				ListenAddress: listen,
				ExtraArgs:     extraArgs,
				LogsDir:       conf.Explorer.LogsDir,
				Failed:        failed.Load,
				Logger:        logger,
			})
			if err != nil {
				return err
			}
			defer handle.Release()
			proc := handle.Process()

			uri := "http://" + listen
			err = bootstrap.WaitReady(cmd.Context(), logger, uri, conf.Explorer.BootstrapInterval, conf.Explorer.BootstrapAttempts)
			if err != nil {
				failed.Store(true)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), uri)

			if conf.Instrumentation.IsPrometheusEnabled() {
				srv, err := instrument.Start(conf.Instrumentation, prometheus.DefaultRegisterer, prometheus.DefaultGatherer, logger)
				if err != nil {
					return err
				}
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := srv.Stop(ctx); err != nil {
						logger.Error("failed to stop metrics server", "err", err)
					}
				}()
			}

			// Stop upon receiving SIGTERM or CTRL-C.
			tmos.TrapSignal(logger, func() {
				stopping.Store(true)
				handle.Release()
			})

			<-proc.Exited()
			if stopping.Load() {
				// the signal handler exits the process
				select {}
			}
			failed.Store(true)
			return fmt.Errorf("explorer exited: %v", proc.ExitErr())
		},
	}
	cmd.Flags().StringVar(&nodeAddr, "node", "", "REST address of the node the explorer reads")
	cmd.Flags().StringSliceVar(&extraArgs, "explorer-args", nil, "extra arguments passed to the explorer")
	return cmd
}

// MakeProbeCommand returns the command waiting for an explorer to answer.
func MakeProbeCommand(conf *config.Config) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Wait for an explorer to answer, failing after the bootstrap budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(conf)
			if err != nil {
				return err
			}
			uri := address
			if uri == "" {
				return errors.New("--address is required")
			}
			if !hasScheme(uri) {
				uri = "http://" + uri
			}
			err = bootstrap.WaitReady(cmd.Context(), logger, uri, conf.Explorer.BootstrapInterval, conf.Explorer.BootstrapAttempts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is ready\n", uri)
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "explorer address, host:port or URL")
	return cmd
}
