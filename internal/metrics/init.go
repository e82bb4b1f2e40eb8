package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
func InitializeMetrics() {
	for _, status := range []string{"success", "error"} {
		ScannerOperationsTotal.WithLabelValues(status)
	}

	for _, mode := range []string{"browse", "search"} {
		for _, status := range []string{"success", "empty", "error"} {
			QueryResultsTotal.WithLabelValues(mode, status)
		}
	}

	for _, op := range []string{"rename", "delete"} {
		for _, status := range []string{"success", "invalid_name", "not_found", "conflict", "invalid_path", "error"} {
			MutationsTotal.WithLabelValues(op, status)
		}
		for _, status := range []string{"success", "absent", "error"} {
			ThumbnailSyncTotal.WithLabelValues(op, status)
		}
	}

	for _, status := range []string{"success", "error_extract", "error_decode", "error_write", "timeout"} {
		ThumbnailGenerationsTotal.WithLabelValues(status)
	}

	for _, status := range []string{"success", "error", "timeout"} {
		ProbeTotal.WithLabelValues(status)
	}

	for _, op := range []string{"stat", "rename", "remove"} {
		for _, vol := range []string{"videos", "thumbnails", "unknown"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}
}
