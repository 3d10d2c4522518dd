package os_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	tmos "github.com/tendermint/explorer-harness/libs/os"
)

func TestSameContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("type Query"), 0600))

	same, err := tmos.SameContent(a, b)
	require.NoError(t, err)
	require.False(t, same, "missing file must compare as different")

	require.NoError(t, os.WriteFile(b, []byte("type Query"), 0600))
	same, err = tmos.SameContent(a, b)
	require.NoError(t, err)
	require.True(t, same)

	require.NoError(t, os.WriteFile(b, []byte("type Querz"), 0600))
	same, err = tmos.SameContent(a, b)
	require.NoError(t, err)
	require.False(t, same)

	_, err = tmos.SameContent(filepath.Join(dir, "missing"), b)
	require.Error(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "explorer.log")

	require.NoError(t, tmos.WriteFileAtomic(path, []byte("first"), 0644))
	require.NoError(t, tmos.WriteFileAtomic(path, []byte("second"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.False(t, tmos.FileExists(dir))
	require.NoError(t, tmos.EnsureDir(dir, 0700))
	require.True(t, tmos.FileExists(dir))
	// idempotent
	require.NoError(t, tmos.EnsureDir(dir, 0700))
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{}) {}

func TestTrapSignal(t *testing.T) {
	if os.Getenv("TRAP_SIGNAL_TEST") == "1" {
		t.Log("inside test process")
		killer()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run="+t.Name())
	mockStderr := bytes.NewBufferString("")
	cmd.Env = append(os.Environ(), "TRAP_SIGNAL_TEST=1")
	cmd.Stderr = mockStderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		want := int(syscall.SIGTERM) + 128
		if e.ExitCode() != want {
			t.Fatalf("wrong exit code, want %d, got %d", want, e.ExitCode())
		}
		return
	}

	t.Fatal("this error should not be triggered")
}

func killer() {
	tmos.TrapSignal(nopLogger{}, func() {})

	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		panic(err)
	}
	if err := p.Signal(syscall.SIGTERM); err != nil {
		panic(err)
	}

	time.Sleep(time.Second)
}
