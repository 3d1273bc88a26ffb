package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Sync job metrics
	SyncCycles            *prometheus.CounterVec
	ProviderFetchFailures *prometheus.CounterVec
	SyncDuration          prometheus.Histogram

	// Chat proxy metrics
	ChatRequests       *prometheus.CounterVec
	ChatRequestLatency prometheus.Histogram
}

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	return &Metrics{
		SyncCycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pitwall_sync_cycles_total",
			Help: "Total sync job invocations by outcome",
		}, []string{"status"}), // "success", "skipped", "failed"

		ProviderFetchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pitwall_provider_fetch_failures_total",
			Help: "Failed results-provider fetches by resource",
		}, []string{"resource"}), // "results", "driver_standings", "constructor_standings"

		SyncDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pitwall_sync_duration_seconds",
			Help:    "Duration of one sync cycle",
			Buckets: prometheus.DefBuckets,
		}),

		ChatRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pitwall_chat_requests_total",
			Help: "Total chat proxy requests by outcome",
		}, []string{"status"}), // "success", "rate_limited", "upstream_error", "bad_request"

		ChatRequestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pitwall_chat_request_duration_seconds",
			Help:    "End-to-end chat proxy latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
