// Package instrument serves the harness Prometheus metrics over HTTP.
package instrument

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/netutil"

	"github.com/tendermint/explorer-harness/config"
	"github.com/tendermint/explorer-harness/libs/log"
)

// MetricsPath is where metrics are served.
const MetricsPath = "/metrics"

// Server is a running metrics endpoint.
type Server struct {
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
}

// Start listens on cfg.PrometheusListenAddr and serves the metrics gathered
// from gatherer. Scrape counters are registered with reg.
func Start(cfg *config.InstrumentationConfig, reg prometheus.Registerer, gatherer prometheus.Gatherer, logger log.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", cfg.PrometheusListenAddr)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.MaxOpenConnections)
	}

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.InstrumentMetricHandler(
		reg, promhttp.HandlerFor(
			gatherer,
			promhttp.HandlerOpts{MaxRequestsInFlight: cfg.MaxOpenConnections},
		),
	))

	var rootHandler http.Handler = mux
	if cfg.IsCorsEnabled() {
		corsMiddleware := cors.New(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead},
		})
		rootHandler = corsMiddleware.Handler(mux)
	}

	s := &Server{
		srv: &http.Server{
			Handler:           rootHandler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		listener: listener,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Prometheus HTTP server Serve", "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", s.Addr(), "path", MetricsPath)
	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string { return s.listener.Addr().String() }

// Stop shuts the server down and waits for it to exit.
func (s *Server) Stop(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	<-s.done
	return err
}
