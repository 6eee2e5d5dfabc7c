package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the counters.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeEmpty    = "empty"
	OutcomeRejected = "rejected"
	OutcomeStale    = "stale"
)

// Metrics owns a private registry so several instances can coexist in tests.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	weatherFetches *prometheus.CounterVec
	geocodes       *prometheus.CounterVec
	mutations      *prometheus.CounterVec
	mapResults     *prometheus.CounterVec
	requests       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		weatherFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meteou_weather_fetches_total",
				Help: "Weather fetches by outcome.",
			},
			[]string{"outcome"},
		),
		geocodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meteou_geocode_searches_total",
				Help: "Geocoding searches by outcome.",
			},
			[]string{"outcome"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meteou_favorite_mutations_total",
				Help: "Favorite add/remove operations by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
		mapResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meteou_map_results_total",
				Help: "Map screen weather results by outcome; stale results are discarded.",
			},
			[]string{"outcome"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total requests by service, endpoint, method, and status.",
			},
			[]string{"service", "endpoint", "method", "status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.weatherFetches,
		m.geocodes,
		m.mutations,
		m.mapResults,
		m.requests,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) WeatherFetch(outcome string) {
	if m == nil {
		return
	}
	m.weatherFetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Geocode(outcome string) {
	if m == nil {
		return
	}
	m.geocodes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Mutation(op, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) MapResult(outcome string) {
	if m == nil {
		return
	}
	m.mapResults.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Request(service, endpoint, method string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(service, endpoint, method, strconv.Itoa(status)).Inc()
}
