package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ExchangeRequestsTotal counts outbound exchange API calls by
	// endpoint and outcome (ok, network_error, exchange_error).
	ExchangeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perpscope_exchange_requests_total",
			Help: "Total number of Hyperliquid info API requests.",
		},
		[]string{"endpoint", "outcome"},
	)

	// ExchangeRequestDuration observes outbound exchange call latency.
	ExchangeRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "perpscope_exchange_request_duration_seconds",
			Help:    "Latency of Hyperliquid info API requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// PartialPortfolioViews counts portfolio renders that were served
	// with one or more failed wallets.
	PartialPortfolioViews = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "perpscope_partial_portfolio_views_total",
			Help: "Number of portfolio views served with partial results.",
		},
	)
)

// MustRegisterMetrics registers all application metrics with the default
// Prometheus registry. Panics on duplicate registration.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		ExchangeRequestsTotal,
		ExchangeRequestDuration,
		PartialPortfolioViews,
	)
}
