// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. The loaders are short-lived batch processes, so pushing
// on exit fits better than exposing a scrape endpoint.
//
// All Prometheus-specific dependencies stay inside this package; the rest of
// the codebase sees only metrics.Backend.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"geoload/internal/metrics"
)

// Backend pushes loader metrics to a Prometheus Pushgateway.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	docCounter   *prometheus.CounterVec // load_documents_total
	batchCounter *prometheus.CounterVec // load_batches_total
	runCounter   *prometheus.CounterVec // load_runs_total
	runDuration  *prometheus.SummaryVec // load_run_duration_seconds
}

// NewBackend constructs a Pushgateway backend. jobName becomes the
// Pushgateway "job" grouping key, typically the tool name.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "geoload"
	}

	reg := prometheus.NewRegistry()

	docCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "load_documents_total",
			Help: "Document counts per tool and kind (read, skipped, inserted).",
		},
		[]string{"tool", "kind"},
	)
	batchCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "load_batches_total",
			Help: "Bulk-write batches flushed, per tool.",
		},
		[]string{"tool"},
	)
	runCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "load_runs_total",
			Help: "Completed runs, partitioned by tool and status.",
		},
		[]string{"tool", "status"},
	)
	runDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "load_run_duration_seconds",
			Help:       "Wall-clock duration of runs, partitioned by tool and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"tool", "status"},
	)

	for _, c := range []prometheus.Collector{docCounter, batchCounter, runCounter, runDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register: %w", err)
		}
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		docCounter:   docCounter,
		batchCounter: batchCounter,
		runCounter:   runCounter,
		runDuration:  runDuration,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "load_documents_total":
		b.docCounter.WithLabelValues(labels["tool"], labels["kind"]).Add(delta)
	case "load_batches_total":
		b.batchCounter.WithLabelValues(labels["tool"]).Add(delta)
	case "load_runs_total":
		b.runCounter.WithLabelValues(labels["tool"], labels["status"]).Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveDuration(name string, seconds float64, labels metrics.Labels) {
	if name != "load_run_duration_seconds" {
		return
	}
	b.runDuration.WithLabelValues(labels["tool"], labels["status"]).Observe(seconds)
}

// Flush pushes the registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
