package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/explorer-harness/libs/log"
)

// slack absorbs scheduler jitter in wall-clock assertions.
const slack = 250 * time.Millisecond

type proberFunc func(ctx context.Context, url string) error

func (f proberFunc) Probe(ctx context.Context, url string) error { return f(ctx, url) }

func TestWaitReadyReachable(t *testing.T) {
	t.Cleanup(leaktest.Check(t))

	var heads int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			atomic.AddInt32(&heads, 1)
		}
		// any status counts as reachable
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(ts.Close)

	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)
	prober := HTTPProber{Client: &http.Client{Transport: transport}}

	err := WaitReadyWith(context.Background(), log.TestingLogger(), prober, ts.URL+"/", time.Second, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&heads))
}

func TestWaitReadyAfterSomeAttempts(t *testing.T) {
	var calls int
	prober := proberFunc(func(ctx context.Context, url string) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	err := WaitReadyWith(context.Background(), log.TestingLogger(), prober, "http://127.0.0.1:1/", 10*time.Millisecond, 10)
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestWaitReadyGivesUp(t *testing.T) {
	var calls int
	prober := proberFunc(func(ctx context.Context, url string) error {
		calls++
		return errors.New("connection refused")
	})

	start := time.Now()
	err := WaitReadyWith(context.Background(), log.TestingLogger(), prober, "http://127.0.0.1:1/", 20*time.Millisecond, 5)
	elapsed := time.Since(start)

	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotReady), "got %v", err)
	require.Contains(t, err.Error(), "connection refused")
	require.LessOrEqual(t, calls, 5)
	require.GreaterOrEqual(t, calls, 1)
	require.Less(t, elapsed, 100*time.Millisecond+slack)
}

func TestWaitReadyBoundedByBudget(t *testing.T) {
	testCases := []struct {
		interval    time.Duration
		maxAttempts int
	}{
		{10 * time.Millisecond, 1},
		{10 * time.Millisecond, 10},
		{50 * time.Millisecond, 4},
		{100 * time.Millisecond, 2},
	}

	// a probe that hangs until its context gives up
	hanging := proberFunc(func(ctx context.Context, url string) error {
		<-ctx.Done()
		return ctx.Err()
	})

	for _, tc := range testCases {
		budget := tc.interval * time.Duration(tc.maxAttempts)

		start := time.Now()
		err := WaitReadyWith(context.Background(), log.NewNopLogger(), hanging, "http://127.0.0.1:1/", tc.interval, tc.maxAttempts)
		elapsed := time.Since(start)

		require.True(t, errors.Is(err, ErrNotReady), "got %v", err)
		require.LessOrEqual(t, elapsed, budget+slack, "interval=%v attempts=%d", tc.interval, tc.maxAttempts)
	}
}

func TestWaitReadyUnreachableHTTP(t *testing.T) {
	t.Cleanup(leaktest.Check(t))

	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL + "/"
	ts.Close()

	err := WaitReady(context.Background(), log.TestingLogger(), url, 20*time.Millisecond, 3)
	require.True(t, errors.Is(err, ErrNotReady), "got %v", err)
}

func TestWaitReadyContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	prober := proberFunc(func(context.Context, string) error {
		cancel()
		return errors.New("connection refused")
	})

	err := WaitReadyWith(ctx, log.TestingLogger(), prober, "http://127.0.0.1:1/", time.Second, 10)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWaitReadyDefaults(t *testing.T) {
	var calls int
	prober := proberFunc(func(context.Context, string) error {
		calls++
		return errors.New("nope")
	})

	// non-positive attempts still probe once
	err := WaitReadyWith(context.Background(), log.NewNopLogger(), prober, "http://127.0.0.1:1/", 10*time.Millisecond, 0)
	require.True(t, errors.Is(err, ErrNotReady))
	require.Equal(t, 1, calls)
}
