package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Histogram buckets for request and outbound call durations, from milliseconds up to the dispatch timeout
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Business Metrics
	ContactFormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_contact_form_submissions_total",
			Help: "Total number of contact form submissions by outcome",
		},
		[]string{"status"},
	)

	ContactFormDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portfolio_contact_form_duration_seconds",
			Help:    "Duration of the contact submission pipeline",
			Buckets: CustomAPIBuckets,
		},
	)

	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_rate_limit_decisions_total",
			Help: "Rate limit decisions by backend and result",
		},
		[]string{"backend", "result"},
	)

	RateLimitTrackedKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portfolio_rate_limit_tracked_keys",
			Help: "Number of client identifiers held by the in-memory rate limiter",
		},
	)

	ScreeningMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_screening_matches_total",
			Help: "Content screening matches by pattern kind",
		},
		[]string{"kind"},
	)

	// Notification Client Metrics
	NotificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_client_send_duration_seconds",
			Help:    "Notification sink send duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"sink", "kind", "status"},
	)

	NotificationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_client_send_total",
			Help: "Total number of notification sends",
		},
		[]string{"sink", "kind", "status"},
	)

	// Storage Client Metrics
	StoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Submission store operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"driver", "operation", "status"},
	)

	StoreRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of submission store operations",
		},
		[]string{"driver", "operation", "status"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically until ctx is done
func RecordInfrastructureMetrics(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)

				GoRoutines.Set(float64(runtime.NumGoroutine()))
				HeapAlloc.Set(float64(m.HeapAlloc))
			}
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
