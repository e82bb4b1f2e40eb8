// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is read through viper from environment variables, with an
// optional YAML/JSON/TOML file named by CONFIG_FILE. Environment variables
// take precedence over the file. See [LoadConfig]. Supported keys:
//
//   - VIDEO_DIR: Library root (default: /videos)
//   - PORT: HTTP server port (default: 5000)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - PUBLIC_PREFIX: URL path the library root is served under (default: /videos)
//   - THUMBNAIL_DIR_NAME: Cache directory name beneath the root (default: thumbnails)
//   - THUMBNAIL_OFFSET: Timestamp of the extracted frame (default: 5s)
//   - THUMBNAIL_WIDTH, THUMBNAIL_HEIGHT: Thumbnail size (default: 320x240)
//   - FFMPEG_PATH, FFPROBE_PATH: Tool locations (default: looked up in PATH)
//   - FFMPEG_TIMEOUT, FFPROBE_TIMEOUT: Per-invocation limits (default: 30s, 10s)
//   - DEFAULT_LIMIT: Browse result size when no limit is given (default: 10)
//   - FANOUT_WORKERS: Concurrent thumbnail/duration resolutions (default: auto)
//   - CORS_ORIGINS: Comma separated allowed origins (default: *)
//   - METRICS_COLLECT_INTERVAL: Cache size gauge refresh (default: 1m)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log static file requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// The video directory is checked but never created (it should be mounted).
// The thumbnail directory is created beneath it when the root exists and is
// writable; otherwise thumbnails are disabled.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
