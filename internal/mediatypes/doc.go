// Package mediatypes holds the set of file extensions the library treats as
// video, together with their MIME types. Lookups are case-insensitive.
package mediatypes
