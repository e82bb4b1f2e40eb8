package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"unicode"

	"video-library/internal/filesystem"
	"video-library/internal/logging"
	"video-library/internal/mediatypes"
	"video-library/internal/metrics"
)

// CacheSyncer keeps derived artifacts in step with renamed or deleted videos.
// A missing artifact is not an error.
type CacheSyncer interface {
	Rename(oldRel, newRel string) error
	Delete(rel string) error
}

// Mutator renames and deletes videos.
type Mutator struct {
	translator *Translator
	cache      CacheSyncer
	cacheDir   string
	retry      filesystem.RetryConfig
}

// NewMutator creates a Mutator. Files under cacheDir are never treated as
// videos.
func NewMutator(translator *Translator, cache CacheSyncer, cacheDir string, retry filesystem.RetryConfig) *Mutator {
	if resolved, err := ResolvePath(cacheDir); err == nil && cacheDir != "" {
		cacheDir = resolved
	}
	return &Mutator{
		translator: translator,
		cache:      cache,
		cacheDir:   cacheDir,
		retry:      retry,
	}
}

// SanitizeName keeps letters, digits, whitespace, '.' and '-' and trims the
// result.
func SanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '.' || r == '-' {
			return r
		}
		return -1
	}, name)
	return strings.TrimSpace(cleaned)
}

// Rename gives the video addressed by oldLocator the display name newName,
// keeping its directory and extension.
func (m *Mutator) Rename(ctx context.Context, oldLocator, newName string) (result RenameResult, err error) {
	defer func() { metrics.MutationsTotal.WithLabelValues("rename", mutationStatus(err)).Inc() }()

	src, oldRel, err := m.resolve(oldLocator)
	if err != nil {
		return RenameResult{}, err
	}

	base := SanitizeName(newName)
	if base == "" {
		return RenameResult{}, fmt.Errorf("%w: %q", ErrInvalidName, newName)
	}

	if err := m.requireVideo(src); err != nil {
		return RenameResult{}, err
	}

	dst := filepath.Join(filepath.Dir(src), base+filepath.Ext(src))
	newRel, err := m.translator.ToRelative(dst)
	if err != nil {
		return RenameResult{}, err
	}

	if dst == src {
		return RenameResult{OldPath: oldRel, NewPath: newRel, NewURL: m.translator.PublicURL(newRel)}, nil
	}

	exists, err := filesystem.Exists(dst, m.retry)
	if err != nil {
		return RenameResult{}, fmt.Errorf("check destination: %w", err)
	}
	if exists {
		return RenameResult{}, fmt.Errorf("%w: %s", ErrConflict, newRel)
	}

	if err := ctx.Err(); err != nil {
		return RenameResult{}, err
	}

	if err := filesystem.RenameWithRetry(src, dst, m.retry); err != nil {
		return RenameResult{}, fmt.Errorf("rename %s: %w", oldRel, err)
	}
	logging.Info("Renamed %s -> %s", oldRel, newRel)

	if err := m.cache.Rename(oldRel, newRel); err != nil {
		logging.Warn("Rename: thumbnail for %s not moved: %v", oldRel, err)
	}

	return RenameResult{
		OldPath: oldRel,
		NewPath: newRel,
		NewURL:  m.translator.PublicURL(newRel),
	}, nil
}

// Delete removes the video addressed by locator and its cached thumbnail.
func (m *Mutator) Delete(ctx context.Context, locator string) (err error) {
	defer func() { metrics.MutationsTotal.WithLabelValues("delete", mutationStatus(err)).Inc() }()

	abs, rel, err := m.resolve(locator)
	if err != nil {
		return err
	}
	if err := m.requireVideo(abs); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := filesystem.RemoveWithRetry(abs, m.retry); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return fmt.Errorf("delete %s: %w", rel, err)
	}
	logging.Info("Deleted %s", rel)

	if err := m.cache.Delete(rel); err != nil {
		logging.Warn("Delete: thumbnail for %s not removed: %v", rel, err)
	}
	return nil
}

// resolve maps a public locator to an absolute path and its canonical
// relative path.
func (m *Mutator) resolve(locator string) (string, string, error) {
	abs, err := m.translator.ToAbsolute(m.translator.StripPublicPrefix(locator))
	if err != nil {
		return "", "", err
	}
	rel, err := m.translator.ToRelative(abs)
	if err != nil {
		return "", "", err
	}
	return abs, rel, nil
}

// requireVideo fails with ErrNotFound unless abs is an existing catalogued
// video outside the cache directory.
func (m *Mutator) requireVideo(abs string) error {
	if m.cacheDir != "" && (abs == m.cacheDir || strings.HasPrefix(abs, m.cacheDir+string(filepath.Separator))) {
		return fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(abs))
	}
	info, err := filesystem.StatWithRetry(abs, m.retry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(abs))
		}
		return fmt.Errorf("stat %s: %w", filepath.Base(abs), err)
	}
	if !info.Mode().IsRegular() || !mediatypes.IsVideo(abs) {
		return fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(abs))
	}
	return nil
}

func mutationStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidPath):
		return "invalid_path"
	default:
		return "error"
	}
}
