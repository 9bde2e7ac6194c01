package web

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mesh-intelligence/todos/pkg/types"
)

const namespace = "todos"

type metrics struct {
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	operations      *prometheus.CounterVec
	sessionsCreated prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Session operations by name and outcome message kind.",
		}, []string{"operation", "kind"}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Sessions created for requests without a stored session.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.requests,
		m.duration,
		m.operations,
		m.sessionsCreated,
		collectors.NewGoCollector(),
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observeRequest(route, method string, code int, d time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route).Observe(d.Seconds())
}

// observeOperation counts an operation by the kind of message it produced,
// or "none" for reads.
func (m *metrics) observeOperation(op string, outcome types.MessageKind) {
	kind := string(outcome)
	if kind == "" {
		kind = "none"
	}
	m.operations.WithLabelValues(op, kind).Inc()
}
