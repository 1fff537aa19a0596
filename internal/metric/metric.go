// Package metric holds the prometheus metrics of the link service.
package metric

import (
	"net/http"
	"time"

	"github.com/emrgen/linkgraph/internal/link"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the collectors recorded by the server.
type Metrics struct {
	registry *prometheus.Registry

	LinkEvents      *prometheus.CounterVec
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	WatchStreams    prometheus.Gauge
}

// NewMetrics creates the link service metrics on a fresh registry together
// with the go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LinkEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linkgraph",
			Name:      "link_events_total",
			Help:      "Link changes by kind.",
		}, []string{"event"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linkgraph",
			Name:      "grpc_requests_total",
			Help:      "Handled grpc calls by method and status code.",
		}, []string{"method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "linkgraph",
			Name:      "grpc_request_duration_seconds",
			Help:      "Duration of unary grpc calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		WatchStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linkgraph",
			Name:      "watch_streams",
			Help:      "Open watch streams.",
		}),
	}

	m.registry.MustRegister(
		m.LinkEvents,
		m.Requests,
		m.RequestDuration,
		m.WatchStreams,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records a finished call.
func (m *Metrics) ObserveRequest(method, code string, duration time.Duration) {
	m.Requests.WithLabelValues(method, code).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// Watch counts the insert, update and remove events of g until the returned
// func is called.
func (m *Metrics) Watch(g link.Graph) (func(), error) {
	var cancels []func()
	cancel := func() {
		for _, c := range cancels {
			c()
		}
	}

	for _, event := range []link.Event{link.EventInsert, link.EventUpdate, link.EventRemove} {
		counter := m.LinkEvents.WithLabelValues(string(event))
		c, err := g.On(event, func(_, _ link.Link, _ link.EventContext) {
			counter.Inc()
		})
		if err != nil {
			cancel()
			return nil, err
		}
		cancels = append(cancels, c)
	}

	return cancel, nil
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return mux
}
