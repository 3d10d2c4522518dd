// Package process launches an explorer binary and supervises it until the
// last handle on it is released.
package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"path/filepath"
	"time"

	"github.com/creachadair/taskgroup"
	"github.com/google/uuid"

	"github.com/tendermint/explorer-harness/libs/log"
	tmos "github.com/tendermint/explorer-harness/libs/os"
)

const (
	// DiagnosticsFile is written under Config.LogsDir when a process is torn
	// down while the owning test is failing.
	DiagnosticsFile = "explorer.log"

	// exitGrace bounds how long teardown waits for the killed process to be
	// reaped.
	exitGrace = 10 * time.Second
)

// Config describes one explorer launch.
type Config struct {
	// Binary is the explorer executable.
	Binary string
	// NodeAddress is the REST address of the node the explorer observes.
	NodeAddress string
	// ListenAddress is the host:port the explorer binds to.
	ListenAddress string
	// ExtraArgs are appended after the standard flags.
	ExtraArgs []string
	// Env is appended to the current environment.
	Env []string

	// LogsDir receives DiagnosticsFile on a failing teardown. Empty
	// disables diagnostics.
	LogsDir string
	// Failed reports whether the owner is failing when the process is torn
	// down. A nil Failed never reports failure.
	Failed func() bool

	Logger log.Logger
}

// Args returns the command line arguments passed to the binary.
func (cfg Config) Args() []string {
	args := []string{
		"--node", cfg.NodeAddress,
		"--binding-address", cfg.ListenAddress,
		"--log-output", "stdout",
	}
	return append(args, cfg.ExtraArgs...)
}

// Process is a running explorer. It is only reachable through a Handle.
type Process struct {
	id     uuid.UUID
	cfg    Config
	cmd    *osexec.Cmd
	logger log.Logger

	output  *outputBuffer
	tasks   *taskgroup.Group
	group   *group
	exited  chan struct{}
	waitErr error // set before exited is closed
}

// Launch starts the explorer described by cfg and returns the first handle
// on it. Output on stdout and stderr is captured, never inherited.
func Launch(cfg Config) (*Handle, error) {
	if cfg.Binary == "" {
		return nil, errors.New("no explorer binary configured")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}

	cmd := osexec.Command(cfg.Binary, cfg.Args()...)
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to execute explorer process %q: %w", cfg.Binary, err)
	}

	id := uuid.New()
	p := &Process{
		id:     id,
		cfg:    cfg,
		cmd:    cmd,
		logger: cfg.Logger.With("explorer", id.String()),
		output: &outputBuffer{},
		tasks:  taskgroup.New(nil),
		exited: make(chan struct{}),
	}
	p.group = newGroup(p.teardown)

	p.tasks.Go(p.drain(stdout))
	p.tasks.Go(p.drain(stderr))
	go p.reap()

	p.logger.Info("launched explorer",
		"pid", cmd.Process.Pid,
		"binary", cfg.Binary,
		"node", cfg.NodeAddress,
		"binding", cfg.ListenAddress)

	return &Handle{proc: p}, nil
}

func (p *Process) drain(r io.Reader) taskgroup.Task {
	return func() error {
		_, err := io.Copy(p.output, r)
		return err
	}
}

// reap waits for both output streams to hit EOF before waiting on the
// process, since Wait closes the pipes.
func (p *Process) reap() {
	if err := p.tasks.Wait(); err != nil {
		p.logger.Debug("explorer output copy ended", "err", err)
	}
	p.waitErr = p.cmd.Wait()
	close(p.exited)
}

// ID identifies this launch in log lines.
func (p *Process) ID() string { return p.id.String() }

// Pid returns the operating system process id.
func (p *Process) Pid() int { return p.cmd.Process.Pid }

// ListenAddress returns the address the explorer was told to bind to.
func (p *Process) ListenAddress() string { return p.cfg.ListenAddress }

// Output returns everything the process wrote to stdout and stderr so far.
func (p *Process) Output() []byte { return p.output.Bytes() }

// Exited is closed once the process has exited and been reaped, whether it
// crashed or was torn down.
func (p *Process) Exited() <-chan struct{} { return p.exited }

// ExitErr returns the result of waiting on the process. It must only be
// called after Exited is closed.
func (p *Process) ExitErr() error { return p.waitErr }

// Closed reports whether teardown has run.
func (p *Process) Closed() bool { return p.group.isClosed() }

// teardown kills the process, waits for it and persists its output when the
// owner is failing. Errors are logged, never returned: teardown must not
// mask the failure that caused it.
func (p *Process) teardown() {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Error("failed to kill explorer", "err", err)
	}

	select {
	case <-p.exited:
		p.logger.Info("explorer stopped", "exit", p.waitErr)
	case <-time.After(exitGrace):
		p.logger.Error("explorer did not exit after kill", "pid", p.Pid(), "grace", exitGrace)
	}

	if p.cfg.LogsDir == "" || p.cfg.Failed == nil || !p.cfg.Failed() {
		return
	}

	path := filepath.Join(p.cfg.LogsDir, DiagnosticsFile)
	p.logger.Info("persisting explorer logs after failure", "path", path)
	if err := tmos.WriteFileAtomic(path, p.Output(), 0644); err != nil {
		p.logger.Error("could not write explorer logs to disk", "path", path, "err", err)
	}
}
