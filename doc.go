// Package main provides the entry point for the Video Library server.
//
// Video Library serves a directory tree of video files over HTTP. It
// catalogues videos by extension, attaches a cached PNG preview and the
// probed duration to each one, and lets clients rename or delete videos
// through a small JSON API.
//
// # Application Lifecycle
//
//  1. Configuration Loading: environment variables and an optional
//     CONFIG_FILE are read through viper and validated
//  2. Memory Configuration: GOMEMLIMIT is derived from MEMORY_LIMIT when set
//  3. Component Initialization:
//     - Path translator for the library root and its public URL prefix
//     - Thumbnail cache backed by ffmpeg and a directory under the root
//     - Duration prober backed by ffprobe
//     - Query service and mutator
//     - Metrics collector for the thumbnail cache gauges
//  4. HTTP Server Setup: routes, middleware and the optional metrics server
//  5. Graceful Shutdown: SIGINT/SIGTERM stop the collector and both servers
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 5000):
//     - GET /api/videos: random sample, or every title match for ?search=
//     - PUT /api/videos/rename and DELETE /api/videos/delete
//     - Static video files under PUBLIC_PREFIX with range support
//     - Cached thumbnails under PUBLIC_PREFIX/THUMBNAIL_DIR_NAME
//     - Health, readiness, liveness and version endpoints
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/health)
//
// # Environment Variables
//
//   - VIDEO_DIR: Library root (default: /videos). Never created.
//   - PUBLIC_PREFIX: URL path the library is served under (default: /videos)
//   - THUMBNAIL_DIR_NAME: Cache directory name under the root (default: thumbnails)
//   - THUMBNAIL_OFFSET, THUMBNAIL_WIDTH, THUMBNAIL_HEIGHT: Preview frame settings
//   - FFMPEG_PATH, FFPROBE_PATH: Tool binaries
//   - FFMPEG_TIMEOUT, FFPROBE_TIMEOUT: Per-run tool timeouts
//   - DEFAULT_LIMIT: Size of the random sample (default: 10)
//   - FANOUT_WORKERS: Concurrent preview and duration lookups per request
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - PORT, METRICS_PORT, METRICS_ENABLED, METRICS_COLLECT_INTERVAL
//   - LOG_LEVEL, LOG_STATIC_FILES, LOG_HEALTH_CHECKS
//   - MEMORY_LIMIT, MEMORY_RATIO: Container-aware heap limit
//
// # Related Packages
//
//   - [video-library/internal/library]: Scanning, querying and mutation
//   - [video-library/internal/media]: Thumbnail cache and duration prober
//   - [video-library/internal/handlers]: HTTP request handlers
//   - [video-library/internal/middleware]: Logging, metrics, CORS, compression
//   - [video-library/internal/startup]: Configuration and startup logging
package main
