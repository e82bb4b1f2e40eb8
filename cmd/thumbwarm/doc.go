// Command thumbwarm pre-generates thumbnails for a video library so the
// first browse of a large collection does not wait on ffmpeg.
//
// Usage:
//
//	thumbwarm <command>
//
// Commands:
//
//	warm    Scan the library and extract a preview for every video that
//	        has none yet. Existing thumbnails are never regenerated.
//
//	status  Report how many videos already have a cached preview.
//
// Configuration:
//
// Settings are read exactly as the server reads them, from environment
// variables and the optional CONFIG_FILE: VIDEO_DIR, THUMBNAIL_DIR_NAME,
// THUMBNAIL_OFFSET, THUMBNAIL_WIDTH, THUMBNAIL_HEIGHT, FFMPEG_PATH and
// FFMPEG_TIMEOUT. WARM_WORKERS sets the number of concurrent extractions
// (default: based on CPU count).
//
// The cache layout and frame geometry are the ones the server uses, so
// thumbnails written here are served without further work.
package main
