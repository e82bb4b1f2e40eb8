package library

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"video-library/internal/logging"
	"video-library/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// DefaultBrowseLimit is the sample size used when no limit is given.
const DefaultBrowseLimit = 10

// ThumbnailResolver returns the preview for an entry, creating it if needed.
type ThumbnailResolver interface {
	GetOrCreate(ctx context.Context, entry Entry) Thumbnail
}

// DurationProber returns the duration of the video at an absolute path.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) Duration
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// DefaultLimit is used for browse queries with limit <= 0.
	DefaultLimit int
	// Workers caps how many entries are resolved at once. 0 means unbounded.
	Workers int
}

// Service answers catalog queries.
type Service struct {
	scanner      *Scanner
	thumbnails   ThumbnailResolver
	prober       DurationProber
	defaultLimit int
	workers      int
	shuffle      func([]Entry)
}

// NewService creates a Service.
func NewService(scanner *Scanner, thumbnails ThumbnailResolver, prober DurationProber, opts ServiceOptions) *Service {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultBrowseLimit
	}
	return &Service{
		scanner:      scanner,
		thumbnails:   thumbnails,
		prober:       prober,
		defaultLimit: opts.DefaultLimit,
		workers:      opts.Workers,
		shuffle: func(entries []Entry) {
			rand.Shuffle(len(entries), func(i, j int) {
				entries[i], entries[j] = entries[j], entries[i]
			})
		},
	}
}

// Query scans the catalog and selects videos.
//
// With an empty search term it returns a random sample of at most limit
// entries. With a search term it returns every entry whose title contains
// the term, case-insensitively, and ignores limit. The result is unordered.
// An empty selection fails with ErrEmptyResult.
func (s *Service) Query(ctx context.Context, search string, limit int) ([]Video, error) {
	start := time.Now()
	term := strings.ToLower(strings.TrimSpace(search))
	mode := "browse"
	if term != "" {
		mode = "search"
	}

	entries, err := s.scanner.Scan(ctx)
	if err != nil {
		metrics.QueryResultsTotal.WithLabelValues(mode, "error").Inc()
		return nil, err
	}

	var selected []Entry
	if term != "" {
		selected = filterByTitle(entries, term)
	} else {
		if limit <= 0 {
			limit = s.defaultLimit
		}
		s.shuffle(entries)
		selected = entries[:min(limit, len(entries))]
	}

	if len(selected) == 0 {
		metrics.QueryResultsTotal.WithLabelValues(mode, "empty").Inc()
		return nil, ErrEmptyResult
	}

	videos := s.resolve(ctx, selected)

	metrics.QueryResultsTotal.WithLabelValues(mode, "success").Inc()
	logging.Debug("Query: mode=%s term=%q scanned=%d returned=%d in %v",
		mode, term, len(entries), len(videos), time.Since(start))
	return videos, nil
}

func filterByTitle(entries []Entry, term string) []Entry {
	var matches []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Title), term) {
			matches = append(matches, e)
		}
	}
	return matches
}

// resolve fetches thumbnail and duration for every entry. The two lookups
// for one entry run concurrently; neither can fail.
func (s *Service) resolve(ctx context.Context, entries []Entry) []Video {
	videos := make([]Video, len(entries))

	var g errgroup.Group
	if s.workers > 0 {
		g.SetLimit(s.workers)
	}

	for i, entry := range entries {
		g.Go(func() error {
			var thumb Thumbnail
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				thumb = s.thumbnails.GetOrCreate(ctx, entry)
			}()
			dur := s.prober.ProbeDuration(ctx, entry.Path)
			wg.Wait()

			videos[i] = newVideo(entry, thumb, dur)
			return nil
		})
	}
	_ = g.Wait()

	return videos
}
