// Package metrics exposes Prometheus metrics for HTTP interception.
//
// A Collector is attached to an intercept.Options with intercept.WithMetrics
// and registered with any prometheus.Registerer. All methods are safe to call
// on a nil *Collector, which records nothing.
//
// # Metrics
//
//   - httpintercept_requests_total: Counter of intercepted requests (labels: method, outcome)
//   - httpintercept_request_duration_seconds: Histogram of time spent resolving a request (labels: outcome)
//   - httpintercept_registrations: Gauge of registrations in the active table
//
// # Outcome label values
//
//   - intercepted: a registration matched and produced the response
//   - declined: a registration matched but its interception callback declined
//   - missing_handler: the missing-registration hook produced the response
//   - not_intercepted: no match and ThrowOnMissingRegistration failed the request
//   - passthrough: no match and the request went to the inner transport
//   - error: matching, a callback, or response construction failed
//
// # Usage
//
//	collector := metrics.NewCollector()
//	prometheus.MustRegister(collector)
//
//	opts := intercept.NewOptions(intercept.WithMetrics(collector))
package metrics
