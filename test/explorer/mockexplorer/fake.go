package mockexplorer

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	// EnvFake makes a test binary behave as the fake explorer when set to 1.
	EnvFake = "MOCK_EXPLORER_FAKE"
	// EnvDelay delays binding by the given duration.
	EnvDelay = "MOCK_EXPLORER_DELAY"
	// EnvExitCode makes the fake exit right after logging its arguments.
	EnvExitCode = "MOCK_EXPLORER_EXIT_CODE"
)

// RunFake is the main function of the fake explorer. It accepts the flags a
// real explorer is launched with, answers queries from Fixtures and blocks
// until the process is killed. It returns an exit code.
func RunFake(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("explorer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	node := fs.String("node", "", "node REST address")
	binding := fs.String("binding-address", "", "address to serve on")
	logOutput := fs.String("log-output", "stderr", "log destination")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *binding == "" {
		fmt.Fprintln(stderr, "missing --binding-address")
		return 2
	}

	logw := stderr
	if *logOutput == "stdout" {
		logw = stdout
	}
	fmt.Fprintf(logw, "explorer starting node=%s binding=%s\n", *node, *binding)
	fmt.Fprintln(stderr, "explorer stderr ready")

	if raw := os.Getenv(EnvExitCode); raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil {
			return 2
		}
		return code
	}
	if raw := os.Getenv(EnvDelay); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 2
		}
		time.Sleep(d)
	}

	s := NewServer(nil).ServeFixtures()
	srv := &http.Server{
		Addr: *binding,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(logw, "request method=%s path=%s\n", r.Method, r.URL.Path)
			s.ServeHTTP(w, r)
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return 1
	}
	return 0
}

// RunFakeIfRequested runs the fake explorer and exits when EnvFake is set.
// Call it first thing in TestMain of packages that launch the test binary as
// an explorer.
func RunFakeIfRequested() {
	if os.Getenv(EnvFake) != "1" {
		return
	}
	os.Exit(RunFake(os.Args[1:], os.Stdout, os.Stderr))
}
