package client

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "explorer_client"

	statusOK            = "ok"
	statusTransport     = "transport"
	statusRequest       = "request"
	statusSerialization = "serialization"
	statusGraphQL       = "graphql"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of queries sent, by query name and outcome.
	Queries metrics.Counter
	// Round trip time of queries, in seconds.
	QueryDuration metrics.Histogram
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		Queries: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "queries",
			Help:      "Number of queries sent to the explorer.",
		}, append(labels, "query", "status")).With(labelsAndValues...),
		QueryDuration: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "query_duration_seconds",
			Help:      "Round trip time of explorer queries.",
			Buckets:   stdprometheus.ExponentialBuckets(0.001, 4, 8),
		}, append(labels, "query")).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Queries:       discard.NewCounter(),
		QueryDuration: discard.NewHistogram(),
	}
}
