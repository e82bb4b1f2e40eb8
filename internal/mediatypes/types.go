package mediatypes

import (
	"path/filepath"
	"strings"
)

// VideoExtensions maps lowercase file extensions to whether they are catalogued.
var VideoExtensions = map[string]bool{
	".mp4": true,
	".mkv": true,
	".avi": true,
	".mov": true,
}

// MimeTypes maps lowercase video extensions to their MIME types.
var MimeTypes = map[string]string{
	".mp4": "video/mp4",
	".mkv": "video/x-matroska",
	".avi": "video/x-msvideo",
	".mov": "video/quicktime",
}

// IsVideo reports whether name carries a recognised video extension.
func IsVideo(name string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(name))]
}

// GetMimeType returns the MIME type for a file name, or
// "application/octet-stream" when the extension is not a video.
func GetMimeType(name string) string {
	if mime, ok := MimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}
