package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"video-library/internal/filesystem"
	"video-library/internal/library"
	"video-library/internal/logging"
	"video-library/internal/metrics"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/sync/singleflight"
)

const (
	thumbnailExt    = ".png"
	tempFilePattern = ".tmp-*" + thumbnailExt
)

// ThumbnailConfig holds the settings for a ThumbnailCache.
type ThumbnailConfig struct {
	// CacheDir is where thumbnails are stored.
	CacheDir string
	// PublicPrefix is the URL prefix CacheDir is served under.
	PublicPrefix string
	FFmpegPath   string
	// Offset is the timestamp of the extracted frame.
	Offset time.Duration
	Width  int
	Height int
	// Timeout bounds a single ffmpeg run.
	Timeout time.Duration
	Retry   filesystem.RetryConfig
}

// DefaultFFmpegTimeout bounds an extraction when no positive timeout is set.
const DefaultFFmpegTimeout = 30 * time.Second

// DefaultThumbnailConfig returns the stock settings for cacheDir.
func DefaultThumbnailConfig(cacheDir string) ThumbnailConfig {
	return ThumbnailConfig{
		CacheDir:     cacheDir,
		PublicPrefix: "/videos/thumbnails",
		FFmpegPath:   "ffmpeg",
		Offset:       5 * time.Second,
		Width:        320,
		Height:       240,
		Timeout:      DefaultFFmpegTimeout,
		Retry:        filesystem.DefaultRetryConfig(),
	}
}

// ThumbnailCache generates and stores one preview image per video. A cached
// file is reused for as long as it exists, regardless of later changes to the
// video.
type ThumbnailCache struct {
	cfg   ThumbnailConfig
	group singleflight.Group
}

// NewThumbnailCache creates a ThumbnailCache, creating the cache directory
// if needed. Its parent (the library root) is never created. A directory
// that cannot be created is not fatal; each generation will retry and
// report its own failure.
func NewThumbnailCache(cfg ThumbnailConfig) *ThumbnailCache {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFFmpegTimeout
	}
	cfg.PublicPrefix = strings.TrimSuffix(cfg.PublicPrefix, "/")

	if err := ensureDir(cfg.CacheDir); err != nil {
		logging.Warn("ThumbnailCache: failed to create cache dir %s: %v", cfg.CacheDir, err)
	} else {
		logging.Debug("ThumbnailCache: cache dir %s", cfg.CacheDir)
	}

	return &ThumbnailCache{cfg: cfg}
}

// Dir returns the cache directory.
func (c *ThumbnailCache) Dir() string {
	return c.cfg.CacheDir
}

// CacheKey returns the cache file name for a video's relative path. Paths
// that differ only in '/' versus '_' share a key.
func CacheKey(rel string) string {
	return strings.ReplaceAll(rel, "/", "_") + thumbnailExt
}

func (c *ThumbnailCache) pathFor(rel string) string {
	return filepath.Join(c.cfg.CacheDir, CacheKey(rel))
}

func (c *ThumbnailCache) urlFor(rel string) string {
	return c.cfg.PublicPrefix + "/" + library.EscapePath(CacheKey(rel))
}

// Cached reports whether a thumbnail for rel is already stored.
func (c *ThumbnailCache) Cached(rel string) bool {
	ok, err := filesystem.Exists(c.pathFor(rel), c.cfg.Retry)
	return err == nil && ok
}

// GetOrCreate returns the thumbnail for entry, extracting it on a cache
// miss. Concurrent misses for the same entry share one extraction.
func (c *ThumbnailCache) GetOrCreate(ctx context.Context, entry library.Entry) library.Thumbnail {
	rel := entry.RelativePath
	key := CacheKey(rel)

	if c.Cached(rel) {
		metrics.ThumbnailCacheHits.Inc()
		return library.ThumbnailAt(c.urlFor(rel))
	}
	metrics.ThumbnailCacheMisses.Inc()

	// The extraction outlives a cancelled caller so other waiters on the
	// same key still get a result.
	genCtx := context.WithoutCancel(ctx)

	_, err, shared := c.group.Do(key, func() (any, error) {
		if c.Cached(rel) {
			return nil, nil
		}
		return nil, c.generate(genCtx, entry.Path, c.pathFor(rel))
	})
	if shared {
		metrics.ThumbnailDeduplicated.Inc()
	}
	if err != nil {
		logging.Debug("ThumbnailCache: no thumbnail for %s: %v", rel, err)
		return library.NoThumbnail
	}

	return library.ThumbnailAt(c.urlFor(rel))
}

// generate extracts one frame from src and writes it to dst as PNG.
func (c *ThumbnailCache) generate(ctx context.Context, src, dst string) error {
	start := time.Now()
	status := "success"
	defer func() {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(status).Inc()
		metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	img, err := c.extractFrame(ctx, src)
	if err != nil {
		switch {
		case errors.Is(err, errTimeout):
			status = "timeout"
		case errors.Is(err, errDecode):
			status = "error_decode"
		default:
			status = "error_extract"
		}
		return err
	}

	thumb := imaging.Fill(img, c.cfg.Width, c.cfg.Height, imaging.Center, imaging.Lanczos)

	if err := c.writeAtomic(dst, thumb); err != nil {
		status = "error_write"
		logging.Warn("ThumbnailCache: failed to write %s: %v", dst, err)
		return err
	}

	logging.Debug("ThumbnailCache: generated %s in %v", filepath.Base(dst), time.Since(start))
	return nil
}

var errDecode = errors.New("failed to decode frame")

func (c *ThumbnailCache) extractFrame(ctx context.Context, src string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	offset := strconv.FormatFloat(c.cfg.Offset.Seconds(), 'f', -1, 64)
	out, err := runTool(ctx, c.cfg.FFmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-ss", offset,
		"-i", src,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "bmp",
		"-",
	)
	if err != nil {
		return nil, err
	}

	// Seeking past the end of a short video succeeds with no output.
	if len(out) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame at %ss for %s", offset, src)
	}

	img, err := bmp.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errDecode, err)
	}
	return img, nil
}

// writeAtomic encodes img into a temp file beside dst and renames it into
// place, so readers never observe a partial thumbnail.
func (c *ThumbnailCache) writeAtomic(dst string, img image.Image) error {
	if err := ensureDir(c.cfg.CacheDir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.cfg.CacheDir, tempFilePattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := imaging.Encode(tmp, img, imaging.PNG); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		logging.Debug("ThumbnailCache: chmod %s: %v", tmpName, err)
	}

	if err := filesystem.RenameWithRetry(tmpName, dst, c.cfg.Retry); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func ensureDir(dir string) error {
	err := os.Mkdir(dir, 0o755)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return nil
	}
	return err
}

// Rename moves the cached thumbnail of oldRel to newRel. A missing entry is
// not an error.
func (c *ThumbnailCache) Rename(oldRel, newRel string) error {
	err := filesystem.RenameWithRetry(c.pathFor(oldRel), c.pathFor(newRel), c.cfg.Retry)
	return c.recordSync("rename", err)
}

// Delete removes the cached thumbnail of rel. A missing entry is not an
// error.
func (c *ThumbnailCache) Delete(rel string) error {
	err := filesystem.RemoveWithRetry(c.pathFor(rel), c.cfg.Retry)
	return c.recordSync("delete", err)
}

func (c *ThumbnailCache) recordSync(op string, err error) error {
	switch {
	case err == nil:
		metrics.ThumbnailSyncTotal.WithLabelValues(op, "success").Inc()
		return nil
	case errors.Is(err, fs.ErrNotExist):
		metrics.ThumbnailSyncTotal.WithLabelValues(op, "absent").Inc()
		return nil
	default:
		metrics.ThumbnailSyncTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("thumbnail %s: %w", op, err)
	}
}

// Stats returns the number of cached thumbnails and their total size.
func (c *ThumbnailCache) Stats() (count int, sizeBytes int64, err error) {
	entries, err := os.ReadDir(c.cfg.CacheDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, err
	}

	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasSuffix(name, thumbnailExt) || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		count++
		sizeBytes += info.Size()
	}
	return count, sizeBytes, nil
}
