// Package library implements the video catalog: translating between on-disk
// paths and public relative identifiers, scanning the library root for
// videos, answering browse/search queries, and renaming or deleting videos
// while keeping their cached thumbnails in step.
//
// Nothing here keeps state between calls. Every query rescans the root, and
// the only persistent derived state is the thumbnail cache directory, which
// is owned by the media package and reached through the ThumbnailResolver and
// CacheSyncer interfaces.
package library
