// Package telemetry translates the service's named events into
// Prometheus metrics.
package telemetry

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus maps known event names onto dedicated counters and counts
// everything else under a catch-all, so new events are never dropped
// silently.
type Prometheus struct {
	registry *prometheus.Registry

	assignmentsResolved *prometheus.CounterVec
	indexBuilds         prometheus.Counter
	indexBuildSeconds   prometheus.Histogram
	indexKMismatches    prometheus.Counter
	indexPersistFails   prometheus.Counter
	staleEntriesSkipped prometheus.Counter
	otherEvents         *prometheus.CounterVec
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Prometheus{
		registry: registry,
		assignmentsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "autoserve_assignments_resolved_total",
			Help: "Assignment lookups resolved, by outcome status.",
		}, []string{"status"}),
		indexBuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "autoserve_index_builds_total",
			Help: "Full rebuilds of the top-K assignment index.",
		}),
		indexBuildSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "autoserve_index_build_duration_seconds",
			Help:    "Wall time spent computing the top-K assignment index.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		indexKMismatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "autoserve_index_k_mismatches_total",
			Help: "Persisted indexes discarded because K differed from the configured value.",
		}),
		indexPersistFails: factory.NewCounter(prometheus.CounterOpts{
			Name: "autoserve_index_persist_failures_total",
			Help: "Failed attempts to persist a freshly built index.",
		}),
		staleEntriesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "autoserve_index_stale_entries_skipped_total",
			Help: "Index entries skipped because the service center no longer exists.",
		}),
		otherEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "autoserve_events_total",
			Help: "Service events without a dedicated metric, by event name.",
		}, []string{"event"}),
	}
}

func (p *Prometheus) Record(name string, attributes map[string]string) {
	switch name {
	case "assignment.resolved":
		p.assignmentsResolved.WithLabelValues(attributes["status"]).Inc()
	case "index.built":
		p.indexBuilds.Inc()
		if seconds, err := strconv.ParseFloat(attributes["duration_seconds"], 64); err == nil {
			p.indexBuildSeconds.Observe(seconds)
		}
	case "index.k_mismatch":
		p.indexKMismatches.Inc()
	case "index.persist_failed":
		p.indexPersistFails.Inc()
	case "index.stale_entry_skipped":
		p.staleEntriesSkipped.Inc()
	default:
		p.otherEvents.WithLabelValues(name).Inc()
	}
}

// Handler exposes the recorder's registry for scraping.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
