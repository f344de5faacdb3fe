// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "restore_sites"

// Restore outcomes.
const (
	OutcomeLaunched   = "launched"
	OutcomeUnresolved = "unresolved"
	OutcomeFailed     = "failed"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	ParsedEntries      prometheus.Counter
	CollectionsSaved   prometheus.Counter
	Restores           *prometheus.CounterVec
	SkippedRecords     *prometheus.CounterVec
	ProfilesDetected   prometheus.Gauge
	DetectionRefreshes prometheus.Counter
}

// New registers all collectors on a fresh registry, together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ParsedEntries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parsed_entries_total",
			Help:      "Site entries extracted from pasted text",
		}),
		CollectionsSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collections_saved_total",
			Help:      "Collections created or updated",
		}),
		Restores: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restores_total",
			Help:      "Restore requests by outcome",
		}, []string{"outcome"}),
		SkippedRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_records_total",
			Help:      "Stored or imported items rejected by the shape guards",
		}, []string{"kind"}),
		ProfilesDetected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profiles_detected",
			Help:      "Profiles whose browser was found on the host at the last refresh",
		}),
		DetectionRefreshes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detection_refreshes_total",
			Help:      "Completed browser detection refreshes",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) AddParsed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ParsedEntries.Add(float64(n))
}

func (m *Metrics) CollectionSaved() {
	if m == nil {
		return
	}
	m.CollectionsSaved.Inc()
}

func (m *Metrics) Restore(outcome string) {
	if m == nil {
		return
	}
	m.Restores.WithLabelValues(outcome).Inc()
}

// Skipped counts one unreadable item; kind is "collection" or "profile".
func (m *Metrics) Skipped(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SkippedRecords.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) DetectionDone(detected int) {
	if m == nil {
		return
	}
	m.ProfilesDetected.Set(float64(detected))
	m.DetectionRefreshes.Inc()
}
