// Package media talks to the external media tools. It owns the thumbnail
// cache (frames extracted with ffmpeg, stored as PNG files in a directory
// beneath the library root) and the duration prober (ffprobe).
//
// Both are best effort: failures are logged and counted, and surface to
// callers as library.NoThumbnail or library.UnknownDuration rather than as
// errors. Every tool invocation is bounded by a timeout.
package media
