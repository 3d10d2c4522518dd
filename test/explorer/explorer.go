// Package explorer drives a blockchain explorer from tests: it launches the
// explorer binary against a node, waits for it to come up, and runs typed
// GraphQL queries against it.
//
//	e := explorer.New(t, node.RESTAddress())
//	resp, err := e.StakePools(ctx, 5)
//
// Every Explorer returned by New or Clone holds a reference on the process.
// The process is killed when the last reference is closed; New and Clone
// register Close with t.Cleanup.
//
// A test that panics runs its cleanups before it is marked failed, so the
// explorer log is only persisted for a panicking test that defers Guard:
//
//	e := explorer.New(t, node.RESTAddress(), explorer.WithLogsDir(dir))
//	defer e.Guard()
package explorer

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/require"

	"github.com/tendermint/explorer-harness/config"
	"github.com/tendermint/explorer-harness/internal/bootstrap"
	"github.com/tendermint/explorer-harness/internal/process"
	"github.com/tendermint/explorer-harness/libs/log"
	tmnet "github.com/tendermint/explorer-harness/libs/net"
	"github.com/tendermint/explorer-harness/rpc/graphql/client"
)

// TestingT is the part of testing.TB an Explorer needs.
type TestingT interface {
	require.TestingT
	Helper()
	Failed() bool
	Cleanup(func())
}

type options struct {
	cfg       *config.ExplorerConfig
	logger    log.Logger
	metrics   *client.Metrics
	out       io.Writer
	extraArgs []string
	env       []string
}

// Option configures New and Connect.
type Option func(*options)

// WithConfig replaces the configuration read from the environment. Options
// editing single fields must come after it.
func WithConfig(cfg *config.ExplorerConfig) Option {
	return func(o *options) {
		c := *cfg
		o.cfg = &c
	}
}

func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *client.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithOutput sets where verbose queries and responses are printed.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

func WithExtraArgs(args ...string) Option {
	return func(o *options) { o.extraArgs = append(o.extraArgs, args...) }
}

func WithEnv(env ...string) Option {
	return func(o *options) { o.env = append(o.env, env...) }
}

// WithLogsDir sets the directory explorer.log is written to when the test
// fails.
func WithLogsDir(dir string) Option {
	return func(o *options) { o.cfg.LogsDir = dir }
}

func WithBinary(path string) Option {
	return func(o *options) { o.cfg.Binary = path }
}

func newOptions(opts []Option) *options {
	o := &options{
		cfg:     config.ExplorerFromEnv(),
		logger:  log.NewNopLogger(),
		metrics: client.NopMetrics(),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Explorer is one reference on an explorer and the client querying it.
type Explorer struct {
	t      TestingT
	handle *process.Handle // nil when connected to an external explorer
	client *client.Client
	logger log.Logger

	// false when the explorer never answered its bootstrap probes
	ready bool

	// set by Guard, shared with every clone
	panicked *atomic.Bool

	closeOnce sync.Once
}

// New launches an explorer watching the node at nodeAddress and waits for it
// to answer probes. A launch failure aborts the test. An explorer that never
// becomes ready is logged and returned anyway; its transport errors then
// match ErrNotReady.
func New(t TestingT, nodeAddress string, opts ...Option) *Explorer {
	t.Helper()
	o := newOptions(opts)
	require.NoError(t, o.cfg.ValidateBasic(), "invalid explorer config")

	panicked := new(atomic.Bool)

	listen, err := tmnet.FreeAddress(o.cfg.ListenHost)
	require.NoError(t, err, "picking explorer port")

	handle, err := process.Launch(process.Config{
		Binary:        o.cfg.Binary,
		NodeAddress:   nodeAddress,
		ListenAddress: listen,
		ExtraArgs:     o.extraArgs,
		Env:           o.env,
		LogsDir:       o.cfg.LogsDir,
		Failed:        func() bool { return panicked.Load() || t.Failed() },
		Logger:        o.logger,
	})
	require.NoError(t, err, "launching explorer")

	e, err := newExplorer(t, handle, listen, o)
	if err != nil {
		handle.Release()
		require.NoError(t, err)
	}
	e.panicked = panicked
	t.Cleanup(e.Close)

	err = bootstrap.WaitReady(context.Background(), o.logger, e.URI(), o.cfg.BootstrapInterval, o.cfg.BootstrapAttempts)
	if err != nil {
		o.logger.Warn("explorer did not become ready", "uri", e.URI(), "err", err)
	} else {
		e.ready = true
	}
	return e
}

// Connect returns an Explorer querying an explorer that is already running
// at address. Closing it does nothing.
func Connect(t TestingT, address string, opts ...Option) *Explorer {
	t.Helper()
	o := newOptions(opts)
	e, err := newExplorer(t, nil, address, o)
	require.NoError(t, err)
	e.ready = true
	return e
}

func newExplorer(t TestingT, handle *process.Handle, address string, o *options) (*Explorer, error) {
	copts := []client.Option{
		client.WithLogger(o.logger),
		client.WithMetrics(o.metrics),
		client.WithOutput(o.out),
		client.WithVerbose(o.cfg.Verbose),
	}
	if o.cfg.QueryTimeout > 0 {
		copts = append(copts, client.WithTimeout(o.cfg.QueryTimeout))
	}
	c, err := client.New(address, copts...)
	if err != nil {
		return nil, fmt.Errorf("explorer client: %w", err)
	}
	return &Explorer{
		t:        t,
		handle:   handle,
		client:   c,
		logger:   o.logger,
		panicked: new(atomic.Bool),
	}, nil
}

// Clone returns a new reference on the same explorer. The clone has its own
// verbose flag. It is closed when the test ends unless closed earlier.
func (e *Explorer) Clone() *Explorer {
	clone := &Explorer{
		t:        e.t,
		client:   e.client.Clone(),
		logger:   e.logger,
		ready:    e.ready,
		panicked: e.panicked,
	}
	if e.handle != nil {
		clone.handle = e.handle.Clone()
	}
	e.t.Cleanup(clone.Close)
	return clone
}

// Guard must be deferred by tests that may panic. On panic it marks the
// explorer failed, closes this reference and panics again, so the last
// release persists the explorer log.
func (e *Explorer) Guard() {
	r := recover()
	if r == nil {
		return
	}
	e.panicked.Store(true)
	e.Close()
	panic(r)
}

// Close releases this reference. The explorer process is killed when the
// last reference is closed. Close is idempotent.
func (e *Explorer) Close() {
	e.closeOnce.Do(func() {
		if e.handle != nil {
			e.handle.Release()
		}
	})
}

// URI returns the base URL of the explorer.
func (e *Explorer) URI() string { return e.client.BaseURL() }

// Ready reports whether the explorer answered its bootstrap probes.
func (e *Explorer) Ready() bool { return e.ready }

// Output returns what the explorer process printed so far, or nil when
// connected to an external explorer.
func (e *Explorer) Output() []byte {
	if e.handle == nil {
		return nil
	}
	return e.handle.Process().Output()
}

// EnableLogs prints every query and raw response of this reference.
func (e *Explorer) EnableLogs() { e.client.SetVerbose(true) }

// DisableLogs stops printing queries and responses.
func (e *Explorer) DisableLogs() { e.client.SetVerbose(false) }

// Run sends an arbitrary query document.
func (e *Explorer) Run(ctx context.Context, body client.QueryBody) (*client.Envelope, error) {
	e.printRequest(body)
	env, err := e.client.Run(ctx, body)
	if err != nil {
		return nil, classify(body.OperationName, err, e.ready)
	}
	return env, nil
}

// CurrentTime returns the date of the latest block. Any error aborts the
// test.
func (e *Explorer) CurrentTime(ctx context.Context) BlockDate {
	e.t.Helper()
	resp, err := e.LastBlock(ctx)
	require.NoError(e.t, err, "querying last block")
	date, err := resp.BlockDate()
	require.NoError(e.t, err, "reading last block date")
	return date
}

func (e *Explorer) printRequest(body client.QueryBody) {
	if !e.client.Verbose() {
		return
	}
	e.logger.Debug("explorer query", "operation", body.OperationName, "variables", body.Variables)
}

func printResponse[R any](e *Explorer, resp *Response[R]) {
	if !e.client.Verbose() || resp.Data == nil {
		return
	}
	e.logger.Debug("explorer response", "data", *resp.Data, "errors", len(resp.Errors))
}
