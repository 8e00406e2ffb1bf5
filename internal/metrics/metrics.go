// Package metrics holds the Prometheus collectors for the API server and the
// client-side mutation layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"protanni/internal/optimistic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	mutations        *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New builds a fresh registry. withRuntime adds the Go and process collectors
// (the server wants them, tests and the dashboard do not).
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "protanni_mutations_total",
			Help: "Optimistic mutations by list, action and outcome.",
		}, []string{"list", "action", "outcome", "kind"}),
		mutationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "protanni_mutation_duration_seconds",
			Help:    "Time from optimistic apply to settlement.",
			Buckets: prometheus.DefBuckets,
		}, []string{"list", "outcome"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "protanni_http_requests_total",
			Help: "API requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "protanni_http_request_duration_seconds",
			Help:    "API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// ObserveMutation implements optimistic.Observer.
func (m *Metrics) ObserveMutation(list, action string, outcome optimistic.Outcome, kind optimistic.ErrorKind, took time.Duration) {
	m.mutations.WithLabelValues(list, action, string(outcome), string(kind)).Inc()
	if outcome != optimistic.Skipped {
		m.mutationDuration.WithLabelValues(list, string(outcome)).Observe(took.Seconds())
	}
}

func (m *Metrics) ObserveHTTP(route, method string, status int, took time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// MutationTotals sums protanni_mutations_total by outcome.
func (m *Metrics) MutationTotals() map[optimistic.Outcome]int {
	out := map[optimistic.Outcome]int{}
	families, err := m.reg.Gather()
	if err != nil {
		return out
	}
	for _, mf := range families {
		if mf.GetName() != "protanni_mutations_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			var outcome string
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "outcome" {
					outcome = lp.GetValue()
				}
			}
			out[optimistic.Outcome(outcome)] += int(metric.GetCounter().GetValue())
		}
	}
	return out
}
