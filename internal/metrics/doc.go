// Package metrics provides Prometheus instrumentation for the video library
// server. All metrics are prefixed with "video_library_".
//
// # Metric Categories
//
// HTTP: request counts, durations and in-flight requests, labelled by method,
// normalised path and status.
//
// Catalog: scanner runs and the number of entries a scan produced, query
// results by mode ("browse" or "search"), and mutation outcomes.
//
// Thumbnails: cache hits and misses, extraction outcomes and duration,
// de-duplicated concurrent requests, and the size of the cache directory
// (refreshed by Collector).
//
// Probe: ffprobe outcomes and duration.
//
// Filesystem: NFS stale handle retries per operation and volume, fed by the
// Observer returned from NewFilesystemObserver.
//
// Metrics are registered with the default registry through promauto and are
// exposed by promhttp on the metrics port.
package metrics
