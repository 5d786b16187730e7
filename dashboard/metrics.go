package dashboard

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/walk"
)

const metricsNamespace = "collabwalk"

// Metrics holds the dashboard's Prometheus collectors. It is also a
// walk.Listener, so attaching it to a Walker records step and walk outcomes.
type Metrics struct {
	registry *prometheus.Registry

	// WalksTotal counts finished walks by outcome.
	// Labels: outcome (ok, not_found, rate_limited, catalog_error, cancelled, error)
	WalksTotal *prometheus.CounterVec

	// WalkDurationSeconds measures whole walks, successful or not.
	WalkDurationSeconds prometheus.Histogram

	// StepsTotal counts visited artists.
	StepsTotal prometheus.Counter

	// DiscoveredArtistsTotal counts artists added to graphs.
	DiscoveredArtistsTotal prometheus.Counter

	// CatalogRequestSeconds measures release listings made by walk steps.
	CatalogRequestSeconds prometheus.Histogram

	// WalksInFlight is the number of walks currently running.
	WalksInFlight prometheus.Gauge

	// HTTPRequestsTotal counts handled requests by route and status code.
	HTTPRequestsTotal *prometheus.CounterVec
}

var _ walk.Listener = (*Metrics)(nil)

// NewMetrics registers the collectors on reg. A nil reg gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		WalksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "walks_total",
			Help:      "Finished walks by outcome",
		}, []string{"outcome"}),
		WalkDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "walk_duration_seconds",
			Help:      "Duration of walks in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		StepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "walk_steps_total",
			Help:      "Artists visited by walks",
		}),
		DiscoveredArtistsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "discovered_artists_total",
			Help:      "Artists discovered by walks",
		}),
		CatalogRequestSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "catalog",
			Name:      "request_seconds",
			Help:      "Release listing latency per walk step in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		WalksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "walks_in_flight",
			Help:      "Walks currently running",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(
		m.WalksTotal,
		m.WalkDurationSeconds,
		m.StepsTotal,
		m.DiscoveredArtistsTotal,
		m.CatalogRequestSeconds,
		m.WalksInFlight,
		m.HTTPRequestsTotal,
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// OnWalkEvent implements walk.Listener.
func (m *Metrics) OnWalkEvent(_ context.Context, event walk.Event, data walk.EventData) {
	switch event {
	case walk.EventStep:
		if data.Step == nil {
			return
		}
		m.StepsTotal.Inc()
		m.DiscoveredArtistsTotal.Add(float64(len(data.Step.Discovered)))
		m.CatalogRequestSeconds.Observe(data.Step.Duration.Seconds())
	case walk.EventWalkEnd:
		m.WalksTotal.WithLabelValues("ok").Inc()
		m.WalkDurationSeconds.Observe(data.Elapsed.Seconds())
	case walk.EventWalkError:
		m.WalksTotal.WithLabelValues(outcome(data.Err)).Inc()
		m.WalkDurationSeconds.Observe(data.Elapsed.Seconds())
	}
}

func outcome(err error) string {
	if catalog.IsNotFound(err) {
		return "not_found"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	if ce, ok := catalog.AsCatalogError(err); ok {
		if ce.RateLimited() {
			return "rate_limited"
		}
		return "catalog_error"
	}
	return "error"
}
