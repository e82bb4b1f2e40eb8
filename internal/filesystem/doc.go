/*
Package filesystem wraps the handful of filesystem calls the catalog makes
(stat, rename, remove) with retry logic for NFS stale file handle errors.

Video libraries are frequently NFS or SMB mounts. When the server side
changes under a client, calls fail with ESTALE (errno 116) even though a
second attempt succeeds. Only ESTALE triggers a retry; every other error,
including ENOENT, is returned immediately so callers can map it precisely.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	if errors.Is(err, fs.ErrNotExist) {
	    // report not found
	}

Backoff is exponential: 50ms, 100ms, 200ms, capped at MaxBackoff.

Retry outcomes are reported to an Observer, labelled by the volume the path
lives on ("videos", "thumbnails" or "unknown"). The metrics package provides
the Prometheus-backed implementation; with no observer installed nothing is
recorded.
*/
package filesystem
