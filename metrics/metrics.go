// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// the answer chain.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smallnest/medichat/graph"
)

const namespace = "medichat"

// Metrics holds the collectors for one registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	nodeDuration  *prometheus.HistogramVec
	nodeErrors    *prometheus.CounterVec
	retrievedDocs prometheus.Histogram
}

// New registers all collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status code.",
			},
			[]string{"route", "method", "code"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		nodeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "chain_node_duration_seconds",
				Help:      "Answer chain node latency.",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"node"},
		),
		nodeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chain_node_errors_total",
				Help:      "Answer chain node failures.",
			},
			[]string{"node"},
		),
		retrievedDocs: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retrieved_documents",
				Help:      "Documents returned per retrieval.",
				Buckets:   []float64{0, 1, 2, 3, 5, 10},
			},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveRetrieval records the number of documents a retrieval returned.
func (m *Metrics) ObserveRetrieval(n int) {
	m.retrievedDocs.Observe(float64(n))
}

// GraphHook returns a trace hook recording node latency and failures.
func (m *Metrics) GraphHook() graph.TraceHook {
	return graph.TraceHookFunc(func(ctx context.Context, span *graph.TraceSpan) {
		switch span.Event {
		case graph.TraceEventNodeEnd:
			m.nodeDuration.WithLabelValues(span.NodeName).Observe(span.Duration.Seconds())
		case graph.TraceEventNodeError:
			m.nodeDuration.WithLabelValues(span.NodeName).Observe(span.Duration.Seconds())
			m.nodeErrors.WithLabelValues(span.NodeName).Inc()
		}
	})
}
