package library

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult is returned by Query when nothing was selected.
	ErrEmptyResult = errors.New("no videos found")
	// ErrInvalidName is returned when a new name is empty after sanitising.
	ErrInvalidName = errors.New("invalid name")
	// ErrNotFound is returned when a mutation target does not exist.
	ErrNotFound = errors.New("video not found")
	// ErrConflict is returned when a rename destination already exists.
	ErrConflict = errors.New("a file with that name already exists")
	// ErrInvalidPath is returned for paths that are empty, absolute, or
	// resolve outside the library root.
	ErrInvalidPath = errors.New("invalid path")
)

// ScanError reports that the library root could not be walked.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }
