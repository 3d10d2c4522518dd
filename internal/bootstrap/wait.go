// Package bootstrap waits for a freshly launched service to answer HTTP.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tendermint/explorer-harness/libs/log"
)

const defaultInterval = time.Second

// ErrNotReady is returned when the service never answered within the
// attempt budget.
var ErrNotReady = errors.New("service not ready")

// Prober sends a single reachability probe. Any response, whatever its
// status, counts as reachable.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// HTTPProber probes with a HEAD request.
type HTTPProber struct {
	Client *http.Client
}

var _ Prober = HTTPProber{}

func (p HTTPProber) Probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	hc := p.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// WaitReady probes url with HEAD requests until it answers or maxAttempts
// probes have failed. See WaitReadyWith.
func WaitReady(ctx context.Context, logger log.Logger, url string, interval time.Duration, maxAttempts int) error {
	return WaitReadyWith(ctx, logger, HTTPProber{}, url, interval, maxAttempts)
}

// WaitReadyWith probes url every interval until a probe succeeds. The whole
// wait never exceeds interval*maxAttempts: every probe is bounded by that
// deadline. It returns nil as soon as a probe succeeds, ErrNotReady (wrapping
// the last probe error) once the budget is spent, or the context error.
func WaitReadyWith(
	ctx context.Context,
	logger log.Logger,
	prober Prober,
	url string,
	interval time.Duration,
	maxAttempts int,
) error {
	if interval <= 0 {
		interval = defaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	budget := interval * time.Duration(maxAttempts)
	wctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	timer := time.NewTimer(0)
	defer timer.Stop()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-wctx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return notReady(logger, url, attempt-1, lastErr)
		case <-timer.C:
		}

		pctx, pcancel := context.WithTimeout(wctx, interval)
		lastErr = prober.Probe(pctx, url)
		pcancel()
		if lastErr == nil {
			logger.Debug("service reachable", "url", url, "attempt", attempt)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Debug("service not yet ready", "url", url, "attempt", attempt, "err", lastErr)
		timer.Reset(interval)
	}

	return notReady(logger, url, maxAttempts, lastErr)
}

func notReady(logger log.Logger, url string, attempts int, lastErr error) error {
	logger.Info("gave up waiting for service", "url", url, "attempts", attempts, "err", lastErr)
	if lastErr == nil {
		return fmt.Errorf("%w: %s after %d attempts", ErrNotReady, url, attempts)
	}
	return fmt.Errorf("%w: %s after %d attempts: %v", ErrNotReady, url, attempts, lastErr)
}
