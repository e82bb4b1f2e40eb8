// Package logging provides the leveled logger used across the video library
// server and its tools.
//
// Levels, lowest first:
//   - DEBUG: ffmpeg invocations, cache hits, per-entry decisions
//   - INFO: startup, configuration, mutations
//   - WARN: best-effort failures (thumbnail or probe unavailable, cache sync)
//   - ERROR: request failures
//   - FATAL: unrecoverable startup errors
//
// The level comes from LOG_LEVEL, or DEBUG=true, and can be overridden with
// SetLevel.
package logging
