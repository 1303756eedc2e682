package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "httpintercept"

// Outcome describes how the interceptor resolved a request.
type Outcome string

// Outcomes recorded in the outcome label.
const (
	OutcomeIntercepted    Outcome = "intercepted"
	OutcomeDeclined       Outcome = "declined"
	OutcomeMissingHandler Outcome = "missing_handler"
	OutcomeNotIntercepted Outcome = "not_intercepted"
	OutcomePassthrough    Outcome = "passthrough"
	OutcomeError          Outcome = "error"
)

// Collector holds the interception metrics. It implements prometheus.Collector.
type Collector struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	registrations prometheus.Gauge
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector with unregistered metrics.
func NewCollector() *Collector {
	return &Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Count of requests seen by the interceptor, by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Time spent resolving a request, including injected latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		registrations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "registrations",
				Help:      "Number of registrations in the active table.",
			},
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requests.Describe(ch)
	c.duration.Describe(ch)
	c.registrations.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requests.Collect(ch)
	c.duration.Collect(ch)
	c.registrations.Collect(ch)
}

// ObserveRequest records one resolved request.
func (c *Collector) ObserveRequest(method string, outcome Outcome, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(strings.ToUpper(method), string(outcome)).Inc()
	c.duration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

// SetRegistrations records the size of the active registration table.
func (c *Collector) SetRegistrations(n int) {
	if c == nil {
		return
	}
	c.registrations.Set(float64(n))
}

// Requests returns the request counter, mainly for tests.
func (c *Collector) Requests() *prometheus.CounterVec {
	return c.requests
}

// Registrations returns the registration gauge, mainly for tests.
func (c *Collector) Registrations() prometheus.Gauge {
	return c.registrations
}
