// Package metrics counts what a run did and can dump the counters in the
// Prometheus text format for a node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// File kinds and results used as label values.
const (
	KindList    = "list"
	KindProfile = "profile"

	ResultUnchanged = "unchanged"
	ResultRewritten = "rewritten"
	ResultPending   = "pending"
	ResultValid     = "valid"
	ResultWarned    = "warned"
	ResultFailed    = "failed"
)

// Metrics holds the run counters on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	Files          *prometheus.CounterVec
	LinesCorrected prometheus.Counter
	Warnings       prometheus.Counter
}

// New creates and registers the counters.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rulekit_files_total",
			Help: "Files processed, by kind and result.",
		}, []string{"kind", "result"}),
		LinesCorrected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rulekit_lines_corrected_total",
			Help: "Rule-list lines rewritten by the normalizer.",
		}),
		Warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rulekit_profile_warnings_total",
			Help: "Block pairing warnings found in profiles.",
		}),
	}
	m.registry.MustRegister(m.Files, m.LinesCorrected, m.Warnings)
	return m
}

// FileDone records one processed file.
func (m *Metrics) FileDone(kind, result string) {
	m.Files.WithLabelValues(kind, result).Inc()
}

// WriteTextfile writes all counters to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
