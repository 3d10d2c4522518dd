package commands

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/explorer-harness/config"
	"github.com/tendermint/explorer-harness/internal/bootstrap"
	tmnet "github.com/tendermint/explorer-harness/libs/net"
	"github.com/tendermint/explorer-harness/test/explorer"
	"github.com/tendermint/explorer-harness/test/explorer/mockexplorer"
	"github.com/tendermint/explorer-harness/version"
)

func TestMain(m *testing.M) {
	mockexplorer.RunFakeIfRequested()
	os.Exit(m.Run())
}

func newRootCommand(conf *config.Config) *cobra.Command {
	rcmd := RootCommand(conf)
	rcmd.AddCommand(
		MakeInitCommand(conf),
		MakeConfigCommand(conf),
		MakeLaunchCommand(conf),
		MakeProbeCommand(conf),
		MakeQueryCommand(conf),
		MakeSchemaCommand(conf),
		MakeVoteCommand(),
		VersionCmd,
	)
	return rcmd
}

// run executes the harness with args against home and returns its stdout.
func run(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	rcmd := newRootCommand(config.DefaultConfig())
	var out bytes.Buffer
	rcmd.SetOut(&out)
	rcmd.SetErr(io.Discard)
	rcmd.SetArgs(append([]string{"--home", home}, args...))
	err := rcmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)
}

func TestInitAndConfigSet(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")

	out, err := run(t, home, "init")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, err = run(t, home, "init")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = run(t, home, "config", "set", "explorer.bootstrap-attempts", "3")
	require.NoError(t, err)
	_, err = run(t, home, "config", "set", "explorer.binary", "unquoted value")
	require.Error(t, err)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Explorer.BootstrapAttempts)

	out, err = run(t, home, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	t.Setenv("EXPLORER_HARNESS_LOG_FORMAT", "xml")
	_, err := run(t, t.TempDir(), "query", "--list")
	assert.Error(t, err)
}

func TestQueryList(t *testing.T) {
	out, err := run(t, t.TempDir(), "query", "--list")
	require.NoError(t, err)
	assert.Equal(t, explorer.QueryNames(), strings.Fields(out))
}

func TestQuery(t *testing.T) {
	srv := mockexplorer.Start(t)
	srv.On("AllStakePools").
		Expect(mockexplorer.ExpectVariable("first", 5)).
		Respond(mockexplorer.Data(mockexplorer.Fixtures["AllStakePools"]))
	srv.On("Settings").Respond(mockexplorer.Errors("settings unavailable"))

	out, err := run(t, t.TempDir(), "query", "AllStakePools", "--address", srv.URL(), "--var", "first=5")
	require.NoError(t, err)
	assert.Contains(t, out, `"f1a3c4"`)
	assert.Contains(t, out, `"totalCount": 3`)

	out, err = run(t, t.TempDir(), "query", "Settings", "--address", srv.URL())
	require.Error(t, err)
	assert.Contains(t, out, "settings unavailable")

	_, err = run(t, t.TempDir(), "query", "NoSuchQuery", "--address", srv.URL())
	assert.True(t, errors.Is(err, explorer.ErrUnknownQuery), "got %v", err)

	_, err = run(t, t.TempDir(), "query", "--address", srv.URL())
	assert.Error(t, err)
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"first=5", "id=f1a3c4", "flag=true", "date={\"epoch\":1}", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"first": float64(5),
		"id":    "f1a3c4",
		"flag":  true,
		"date":  map[string]interface{}{"epoch": float64(1)},
		"empty": "",
	}, vars)

	for _, bad := range []string{"noequals", "=value"} {
		_, err := parseVars([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestProbe(t *testing.T) {
	srv := mockexplorer.Start(t)
	out, err := run(t, t.TempDir(), "probe", "--address", srv.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "is ready")
	assert.Equal(t, 1, srv.Probes())

	t.Setenv("EXPLORER_HARNESS_EXPLORER_BOOTSTRAP_ATTEMPTS", "2")
	t.Setenv("EXPLORER_HARNESS_EXPLORER_BOOTSTRAP_INTERVAL", "20ms")
	addr, err := tmnet.FreeAddress("127.0.0.1")
	require.NoError(t, err)
	_, err = run(t, t.TempDir(), "probe", "--address", addr)
	assert.True(t, errors.Is(err, bootstrap.ErrNotReady), "got %v", err)
}

func TestSchemaCheck(t *testing.T) {
	dir := t.TempDir()
	actual := filepath.Join(dir, "actual.graphql")
	expected := filepath.Join(dir, "expected.graphql")
	require.NoError(t, os.WriteFile(actual, []byte("type Query { status: Status! }\n"), 0644))

	out, err := run(t, dir, "schema", "check", actual, "--expected", expected, "--fail-on-drift")
	assert.True(t, errors.Is(err, ErrSchemaDrift), "got %v", err)
	assert.Contains(t, out, "schema updated")

	out, err = run(t, dir, "schema", "check", actual, "--expected", expected, "--fail-on-drift")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")
}

func TestVote(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v0/vote/active/committees":
			_, _ = w.Write([]byte(`["c0ffee","beef"]`))
		case "/api/v0/vote/active/plans":
			_, _ = w.Write([]byte(`[{"id":"vp1"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	home := t.TempDir()

	out, err := run(t, home, "vote", "committees", "--host", ts.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `["c0ffee","beef"]`, out)

	out, err = run(t, home, "vote", "committees", "--host", ts.URL, "--output-format", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "- c0ffee\n- beef\n", out)

	out, err = run(t, home, "vote", "active-plans", "--host", ts.URL, "--output-format", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "- id: vp1\n", out)

	_, err = run(t, home, "vote", "committees", "--host", ts.URL, "--output-format", "xml")
	assert.Error(t, err)
}

func TestLaunchWritesLogsWhenExplorerDies(t *testing.T) {
	logsDir := t.TempDir()
	t.Setenv(mockexplorer.EnvFake, "1")
	t.Setenv(mockexplorer.EnvExitCode, "3")
	t.Setenv("EXPLORER_HARNESS_EXPLORER_BINARY", os.Args[0])
	t.Setenv("EXPLORER_HARNESS_EXPLORER_LOGS_DIR", logsDir)
	t.Setenv("EXPLORER_HARNESS_EXPLORER_BOOTSTRAP_ATTEMPTS", "2")
	t.Setenv("EXPLORER_HARNESS_EXPLORER_BOOTSTRAP_INTERVAL", "20ms")

	_, err := run(t, t.TempDir(), "launch", "--node", "127.0.0.1:8443")
	require.True(t, errors.Is(err, bootstrap.ErrNotReady), "got %v", err)

	contents, err := os.ReadFile(filepath.Join(logsDir, "explorer.log"))
	require.NoError(t, err)
	assert.Contains(t, string(contents), "explorer starting node=127.0.0.1:8443")
}

func TestLaunchRequiresNode(t *testing.T) {
	_, err := run(t, t.TempDir(), "launch")
	assert.Error(t, err)
}
