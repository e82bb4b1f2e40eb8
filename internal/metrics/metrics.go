package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_library_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog metrics
var (
	ScannerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_scanner_operations_total",
			Help: "Total number of catalog scans",
		},
		[]string{"status"},
	)

	ScannerOperationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_library_scanner_operation_duration_seconds",
			Help:    "Duration of a full catalog scan in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ScannerEntriesFound = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_library_scanner_entries_found",
			Help:    "Number of video entries found per scan",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	QueryResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_query_results_total",
			Help: "Total number of catalog queries by mode and outcome",
		},
		[]string{"mode", "status"}, // mode: browse|search, status: success|empty|error
	)

	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_mutations_total",
			Help: "Total number of rename/delete operations by outcome",
		},
		[]string{"operation", "status"},
	)
)

// Thumbnail metrics
var (
	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_library_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_library_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)

	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_thumbnail_generations_total",
			Help: "Total number of thumbnail extractions by outcome",
		},
		[]string{"status"}, // success|error_extract|error_decode|error_write|timeout
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_library_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail extraction duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	ThumbnailDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_library_thumbnail_deduplicated_total",
			Help: "Thumbnail requests that shared an in-flight extraction",
		},
	)

	ThumbnailCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_thumbnail_cache_size_bytes",
			Help: "Total size of the thumbnail cache in bytes",
		},
	)

	ThumbnailCacheCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_thumbnail_cache_count",
			Help: "Number of thumbnails in the cache",
		},
	)

	ThumbnailSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_thumbnail_sync_total",
			Help: "Cache entry renames and deletes that follow a video mutation",
		},
		[]string{"operation", "status"}, // status: success|absent|error
	)
)

// Probe metrics
var (
	ProbeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_probe_total",
			Help: "Total number of ffprobe duration lookups by outcome",
		},
		[]string{"status"}, // success|error|timeout
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_library_probe_duration_seconds",
			Help:    "ffprobe duration lookup time in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Filesystem metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_filesystem_retry_attempts_total",
			Help: "Retries issued after an NFS stale file handle error",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_filesystem_retry_failures_total",
			Help: "Operations that still failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_library_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)
