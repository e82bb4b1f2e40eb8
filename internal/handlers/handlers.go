package handlers

import (
	"context"
	"time"

	"video-library/internal/library"
)

// Querier answers catalog queries.
type Querier interface {
	Query(ctx context.Context, search string, limit int) ([]library.Video, error)
}

// Mutator renames and deletes videos.
type Mutator interface {
	Rename(ctx context.Context, oldLocator, newName string) (library.RenameResult, error)
	Delete(ctx context.Context, locator string) error
}

// Status describes the state of the dependencies health checks report on.
type Status struct {
	VideoDir         string
	ThumbnailsOn     bool
	FFmpegAvailable  bool
	FFprobeAvailable bool
}

type Handlers struct {
	videos    Querier
	mutator   Mutator
	status    Status
	startTime time.Time
}

func New(videos Querier, mutator Mutator, status Status) *Handlers {
	return &Handlers{
		videos:    videos,
		mutator:   mutator,
		status:    status,
		startTime: time.Now(),
	}
}
