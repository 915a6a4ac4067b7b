// Package metrics exports retry behaviour to Prometheus
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jzx17/backoffice/pkg/retry"
)

// RetryCollector records attempt outcomes and backoff delays. It satisfies
// retry.MetricsCollector.
type RetryCollector struct {
	attempts  *prometheus.CounterVec
	cancelled *prometheus.CounterVec
	backoff   *prometheus.HistogramVec
}

var _ retry.MetricsCollector = (*RetryCollector)(nil)

// NewRetryCollector registers the retry metrics on reg
func NewRetryCollector(reg prometheus.Registerer) *RetryCollector {
	factory := promauto.With(reg)
	return &RetryCollector{
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_retry_attempts_total",
				Help: "Attempts made by the retry executor, by outcome",
			},
			[]string{"operation", "outcome"},
		),
		cancelled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_retry_cancelled_total",
				Help: "Calls abandoned by the caller between attempts",
			},
			[]string{"operation"},
		),
		backoff: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_retry_backoff_seconds",
				Help:    "Backoff waited before a retry",
				Buckets: []float64{0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8, 30, 60},
			},
			[]string{"operation"},
		),
	}
}

// ObserveAttempt counts one attempt
func (c *RetryCollector) ObserveAttempt(operation string, outcome retry.OutcomeKind) {
	c.attempts.WithLabelValues(operation, outcome.String()).Inc()
}

// ObserveCancelled counts a call cancelled before or between attempts
func (c *RetryCollector) ObserveCancelled(operation string) {
	c.cancelled.WithLabelValues(operation).Inc()
}

// ObserveBackoff records a scheduled wait
func (c *RetryCollector) ObserveBackoff(operation string, delay time.Duration) {
	c.backoff.WithLabelValues(operation).Observe(delay.Seconds())
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// NewServer exposes Handler on addr at /metrics
func NewServer(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
