package library

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"video-library/internal/logging"
	"video-library/internal/mediatypes"
	"video-library/internal/metrics"
)

// Scanner walks the library root for video files.
//
// Symlinked files are followed; symlinked directories below the root are not
// traversed. A symlinked root is resolved by the Translator.
type Scanner struct {
	translator *Translator
	cacheDir   string
}

// NewScanner creates a Scanner. cacheDir is excluded from results even when
// it lives under the root.
func NewScanner(translator *Translator, cacheDir string) *Scanner {
	if cacheDir != "" {
		if resolved, err := ResolvePath(cacheDir); err == nil {
			cacheDir = resolved
		}
	}
	return &Scanner{
		translator: translator,
		cacheDir:   cacheDir,
	}
}

// Scan returns every video under the root in filesystem enumeration order.
// An unreadable root fails with *ScanError; unreadable entries below it are
// logged and skipped.
func (s *Scanner) Scan(ctx context.Context) ([]Entry, error) {
	start := time.Now()
	var err error
	var entries []Entry
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.ScannerOperationsTotal.WithLabelValues(status).Inc()
		metrics.ScannerOperationDuration.Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.ScannerEntriesFound.Observe(float64(len(entries)))
		}
	}()

	root := s.translator.Root()
	info, statErr := os.Stat(root)
	if statErr != nil {
		err = &ScanError{Root: root, Err: statErr}
		return nil, err
	}
	if !info.IsDir() {
		err = &ScanError{Root: root, Err: errors.New("not a directory")}
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return &ScanError{Root: root, Err: walkErr}
			}
			logging.Warn("Scanner: skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if s.cacheDir != "" && path == s.cacheDir {
				return fs.SkipDir
			}
			return nil
		}

		if !mediatypes.IsVideo(d.Name()) || !isRegularFile(path, d) {
			return nil
		}

		entry, ok := s.entryFor(path, d.Name())
		if ok {
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Debug("Scanner: found %d videos under %s in %v", len(entries), root, time.Since(start))
	return entries, nil
}

func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *Scanner) entryFor(path, name string) (Entry, bool) {
	rel, err := s.translator.ToRelative(path)
	if err != nil {
		logging.Warn("Scanner: %v", err)
		return Entry{}, false
	}
	return Entry{
		Filename:     name,
		Title:        strings.TrimSuffix(name, filepath.Ext(name)),
		RelativePath: rel,
		URL:          s.translator.PublicURL(rel),
		Path:         path,
	}, true
}
