// Package metrics records hg activity in a private Prometheus registry.
// A CLI run is short-lived, so instead of serving /metrics the registry is
// dumped in text exposition format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"hg-go/internal/hg"
)

const namespace = "hg"

// Recorder implements hg.Recorder with Prometheus counters.
type Recorder struct {
	registry *prometheus.Registry

	storageReads   *prometheus.CounterVec
	storageWrites  *prometheus.CounterVec
	loadsDiscarded prometheus.Counter
	advisorCalls   *prometheus.CounterVec
}

var _ hg.Recorder = (*Recorder)(nil)

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		storageReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "reads_total",
			Help:      "Collection reads, labeled by collection and outcome (ok, missing, corrupt, error).",
		}, []string{"collection", "outcome"}),
		storageWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "writes_total",
			Help:      "Collection writes, labeled by collection and outcome.",
		}, []string{"collection", "outcome"}),
		loadsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "loads_discarded_total",
			Help:      "Loads dropped because a newer login or logout superseded them.",
		}),
		advisorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "advisor",
			Name:      "calls_total",
			Help:      "AI advisor calls, labeled by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	r.registry.MustRegister(r.storageReads, r.storageWrites, r.loadsDiscarded, r.advisorCalls)
	return r
}

func (r *Recorder) StorageRead(collection, outcome string) {
	r.storageReads.WithLabelValues(collection, outcome).Inc()
}

func (r *Recorder) StorageWrite(collection, outcome string) {
	r.storageWrites.WithLabelValues(collection, outcome).Inc()
}

func (r *Recorder) LoadDiscarded() {
	r.loadsDiscarded.Inc()
}

func (r *Recorder) AdvisorCall(operation, outcome string) {
	r.advisorCalls.WithLabelValues(operation, outcome).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric to path, replacing the file atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
