package observability

import (
	"fmt"

	"github.com/aretw0/domino/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by commit hooks.
type Metrics struct {
	commits       *prometheus.CounterVec
	changedFields prometheus.Histogram
	modified      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domino_commits_total",
				Help: "Total number of committed generations",
			},
			[]string{"op"},
		),
		changedFields: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "domino_commit_changed_fields",
				Help:    "Number of values changed by a commit",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
		modified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domino_modified_transitions_total",
				Help: "Number of commits that flipped the modified flag",
			},
			[]string{"to"},
		),
	}
	for _, c := range []prometheus.Collector{m.commits, m.changedFields, m.modified} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

// Observe records e.
func (m *Metrics) Observe(e *domain.CommitEvent) {
	m.commits.WithLabelValues(string(e.Op)).Inc()
	if e.Diff == nil {
		return
	}
	m.changedFields.Observe(float64(len(e.Diff.Values)))
	if e.Diff.IsModified != nil {
		m.modified.WithLabelValues(fmt.Sprint(*e.Diff.IsModified)).Inc()
	}
}

// Hooks returns lifecycle hooks that feed m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{OnCommit: m.Observe}
}
