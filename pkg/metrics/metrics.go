package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// Registry holds every collector of this module, separate from the global default registry
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Buckets tuned for API calls from a few milliseconds up to the 30s transport timeout
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	// Outbound calls to the scheduling service
	APIClientRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_client_request_duration_seconds",
			Help:    "Scheduling service request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	APIClientRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_client_request_total",
			Help: "Total number of scheduling service requests",
		},
		[]string{"operation", "status"},
	)

	// Persistent key-value bridge
	StorageOperationTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operation_total",
			Help: "Total number of persistent storage operations",
		},
		[]string{"operation", "status"},
	)

	// Reactive stores
	StoreChanges = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_changes_total",
			Help: "Total number of published store changes",
		},
		[]string{"store"},
	)

	// Session lifecycle: login, switch, logout, directory refresh
	SessionEvents = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_events_total",
			Help: "Total number of session lifecycle events",
		},
		[]string{"event", "status"},
	)

	DirectorySize = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "directory_users",
			Help: "Number of users currently held by the directory store",
		},
	)
)

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}

// Push sends everything in Registry to the Pushgateway at url under job.
// An empty url disables pushing.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
