package metrics

import (
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path", "status"},
	)

	UploadSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upload_sessions_total",
			Help: "Total number of upload sessions created",
		},
		[]string{"status"},
	)

	ChunksReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chunks_received_total",
			Help: "Total number of chunk uploads accepted",
		},
		[]string{"outcome"},
	)

	AssemblyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assembly_duration_seconds",
			Help:    "Duration of chunk reassembly",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	GCRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gc_runs_total",
			Help: "Total number of GC sweeps",
		},
		[]string{"trigger"},
	)

	GCReclaimedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gc_reclaimed_total",
			Help: "Total number of directories/files reclaimed by GC",
		},
		[]string{"kind"},
	)

	JobsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_enqueued_total",
			Help: "Total number of transcoding jobs enqueued",
		},
		[]string{"resolution"},
	)

	JobsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_processed_total",
			Help: "Total number of transcoding jobs processed",
		},
		[]string{"resolution", "status"},
	)

	JobsProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobs_processing_duration_seconds",
			Help:    "Duration of transcoding job processing in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"resolution"},
	)

	JobRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_retries_total",
			Help: "Total number of job retry attempts",
		},
		[]string{"resolution"},
	)

	JobsInQueue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobs_in_queue",
			Help: "Number of jobs currently waiting or active",
		},
		[]string{"state"},
	)

	WorkerPoolActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_pool_active_jobs",
			Help: "Number of jobs currently being processed by workers",
		},
	)

	EventBusPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_bus_publish_total",
			Help: "Total number of event bus publishes by sink",
		},
		[]string{"sink", "status"},
	)

	LiveClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_clients_connected",
			Help: "Number of connected live gateway clients",
		},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application information",
		},
		[]string{"version", "environment", "service"},
	)

	AppUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_up",
			Help: "Application is up and running",
		},
	)
)

func NormalizePath(path string) string {
	return uuidRegex.ReplaceAllString(path, ":id")
}

func RecordJobEnqueued(resolution string) {
	JobsEnqueuedTotal.WithLabelValues(resolution).Inc()
}

func RecordJobProcessed(resolution, status string, durationSeconds float64) {
	JobsProcessedTotal.WithLabelValues(resolution, status).Inc()
	JobsProcessingDuration.WithLabelValues(resolution).Observe(durationSeconds)
}

func RecordJobRetry(resolution string) {
	JobRetriesTotal.WithLabelValues(resolution).Inc()
}

func SetJobsInQueue(state string, count int) {
	JobsInQueue.WithLabelValues(state).Set(float64(count))
}

func RecordEventPublish(sink, status string) {
	EventBusPublishTotal.WithLabelValues(sink, status).Inc()
}

func SetAppInfo(version, environment, service string) {
	AppInfo.WithLabelValues(version, environment, service).Set(1)
	AppUp.Set(1)
}
