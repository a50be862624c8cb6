// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the loaders.
//
// The package is intentionally minimal:
//
//   - A narrow Backend interface covering counters and duration
//     observations.
//   - A global, pluggable backend defaulting to a no-op implementation, so
//     metric calls are always safe even when nothing is configured.
//
// Concrete systems live in subpackages (see prompush for the Prometheus
// Pushgateway backend) so the loaders depend only on this interface.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, seconds float64, labels Labels)
	// Flush pushes metrics if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)        {}
func (nopBackend) ObserveDuration(name string, seconds float64, labels Labels) {}
func (nopBackend) Flush() error                                                { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the current one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordDocs counts documents per tool and kind. Typical kinds:
//
//   - "read"     records pulled from the source
//   - "skipped"  rows dropped before insertion (empty WKT)
//   - "inserted" documents the sink reports as written
func RecordDocs(tool, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("load_documents_total", float64(delta), Labels{
		"tool": tool,
		"kind": kind,
	})
}

// RecordBatches counts flushed batches for the given tool.
func RecordBatches(tool string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("load_batches_total", float64(delta), Labels{"tool": tool})
}

// RecordRun records one complete run: its outcome and wall-clock duration.
func RecordRun(tool string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"tool": tool, "status": status}
	backend.IncCounter("load_runs_total", 1, lbls)
	backend.ObserveDuration("load_run_duration_seconds", d.Seconds(), lbls)
}
