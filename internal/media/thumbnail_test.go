package media

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"video-library/internal/filesystem"
	"video-library/internal/library"
	"video-library/internal/metrics"

	"github.com/disintegration/imaging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/image/bmp"
)

// writeScript writes an executable bash script into dir and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/bash\n"+body), 0o755); err != nil {
		t.Fatalf("failed to write script %s: %v", name, err)
	}
	return path
}

// writeFrame writes a BMP test frame and returns its path.
func writeFrame(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	path := filepath.Join(dir, "frame.bmp")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create frame: %v", err)
	}
	defer f.Close()
	if err := bmp.Encode(f, img); err != nil {
		t.Fatalf("failed to encode frame: %v", err)
	}
	return path
}

// mockFFmpeg returns a fake ffmpeg that prints a BMP frame and appends a
// line to the returned counter file on every run.
func mockFFmpeg(t *testing.T, delay string) (ffmpeg, counter string) {
	t.Helper()
	dir := t.TempDir()
	frame := writeFrame(t, dir, 640, 360)
	counter = filepath.Join(dir, "calls")

	body := fmt.Sprintf("echo run >> %q\n", counter)
	if delay != "" {
		body += "sleep " + delay + "\n"
	}
	body += fmt.Sprintf("cat %q\n", frame)
	return writeScript(t, dir, "ffmpeg", body), counter
}

func callCount(t *testing.T, counter string) int {
	t.Helper()
	data, err := os.ReadFile(counter)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return strings.Count(string(data), "run")
}

func newTestCache(t *testing.T, ffmpeg string) *ThumbnailCache {
	t.Helper()
	cfg := DefaultThumbnailConfig(filepath.Join(t.TempDir(), "thumbnails"))
	cfg.FFmpegPath = ffmpeg
	cfg.Timeout = 5 * time.Second
	cfg.Retry = filesystem.RetryConfig{MaxRetries: 0}
	return NewThumbnailCache(cfg)
}

func testEntry(rel string) library.Entry {
	return library.Entry{
		Filename:     filepath.Base(rel),
		RelativePath: rel,
		Path:         filepath.Join("/library", rel),
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"clip.mp4", "clip.mp4.png"},
		{"a/b.mp4", "a_b.mp4.png"},
		{"a/b/c d.MKV", "a_b_c d.MKV.png"},
		{"a_b/c.mp4", "a_b_c.mp4.png"},
		{"a/b_c.mp4", "a_b_c.mp4.png"},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			if got := CacheKey(tt.rel); got != tt.want {
				t.Errorf("CacheKey(%q) = %q, want %q", tt.rel, got, tt.want)
			}
		})
	}
}

func TestNewThumbnailCacheCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "thumbnails")
	c := NewThumbnailCache(ThumbnailConfig{CacheDir: dir})

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("cache dir not created: %v", err)
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}
}

func TestNewThumbnailCacheDefaultsTimeout(t *testing.T) {
	c := NewThumbnailCache(ThumbnailConfig{CacheDir: filepath.Join(t.TempDir(), "thumbnails")})
	if c.cfg.Timeout != DefaultFFmpegTimeout {
		t.Errorf("Timeout = %v, want %v", c.cfg.Timeout, DefaultFFmpegTimeout)
	}
}

func TestNewThumbnailCacheMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	NewThumbnailCache(ThumbnailConfig{CacheDir: filepath.Join(root, "thumbnails")})

	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("library root was created: %v", err)
	}
}

func TestGetOrCreateGeneratesThenReuses(t *testing.T) {
	ffmpeg, counter := mockFFmpeg(t, "")
	c := newTestCache(t, ffmpeg)
	entry := testEntry("a/b.mp4")

	misses := testutil.ToFloat64(metrics.ThumbnailCacheMisses)
	hits := testutil.ToFloat64(metrics.ThumbnailCacheHits)

	thumb := c.GetOrCreate(context.Background(), entry)
	if !thumb.Available {
		t.Fatal("expected thumbnail to be available")
	}
	if thumb.URL != "/videos/thumbnails/a_b.mp4.png" {
		t.Errorf("URL = %q", thumb.URL)
	}

	img, err := imaging.Open(filepath.Join(c.Dir(), "a_b.mp4.png"))
	if err != nil {
		t.Fatalf("cached thumbnail unreadable: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("thumbnail size = %dx%d, want 320x240", b.Dx(), b.Dy())
	}

	again := c.GetOrCreate(context.Background(), entry)
	if again != thumb {
		t.Errorf("second lookup = %+v, want %+v", again, thumb)
	}
	if n := callCount(t, counter); n != 1 {
		t.Errorf("ffmpeg ran %d times, want 1", n)
	}

	if got := testutil.ToFloat64(metrics.ThumbnailCacheMisses) - misses; got != 1 {
		t.Errorf("cache misses delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.ThumbnailCacheHits) - hits; got != 1 {
		t.Errorf("cache hits delta = %v, want 1", got)
	}
}

func TestGetOrCreateEscapesURL(t *testing.T) {
	c := newTestCache(t, filepath.Join(t.TempDir(), "no-ffmpeg"))
	if err := os.WriteFile(filepath.Join(c.Dir(), "dir_50% #1.mp4.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	thumb := c.GetOrCreate(context.Background(), testEntry("dir/50% #1.mp4"))
	if !thumb.Available {
		t.Fatal("expected cached thumbnail")
	}
	if thumb.URL != "/videos/thumbnails/dir_50%25%20%231.mp4.png" {
		t.Errorf("URL = %q", thumb.URL)
	}
}

func TestGetOrCreateKeepsStaleEntry(t *testing.T) {
	ffmpeg, counter := mockFFmpeg(t, "")
	c := newTestCache(t, ffmpeg)

	stale := filepath.Join(c.Dir(), "clip.mp4.png")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	thumb := c.GetOrCreate(context.Background(), testEntry("clip.mp4"))
	if !thumb.Available {
		t.Fatal("expected existing entry to be reused")
	}
	if n := callCount(t, counter); n != 0 {
		t.Errorf("ffmpeg ran %d times, want 0", n)
	}
	data, _ := os.ReadFile(stale)
	if string(data) != "old" {
		t.Error("existing cache entry was overwritten")
	}
}

func TestGetOrCreateFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status string
	}{
		{"short video", "exit 0\n", "error_extract"},
		{"ffmpeg error", "echo 'Invalid data found' >&2\nexit 1\n", "error_extract"},
		{"garbage output", "echo 'not an image'\n", "error_decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ffmpeg := writeScript(t, t.TempDir(), "ffmpeg", tt.body)
			c := newTestCache(t, ffmpeg)

			before := testutil.ToFloat64(metrics.ThumbnailGenerationsTotal.WithLabelValues(tt.status))

			thumb := c.GetOrCreate(context.Background(), testEntry("x.mp4"))
			if thumb.Available {
				t.Fatal("expected no thumbnail")
			}
			if thumb != library.NoThumbnail {
				t.Errorf("got %+v, want NoThumbnail", thumb)
			}

			if c.Cached("x.mp4") {
				t.Error("failed generation left a cache entry")
			}
			if count, _, _ := c.Stats(); count != 0 {
				t.Errorf("Stats count = %d, want 0", count)
			}

			after := testutil.ToFloat64(metrics.ThumbnailGenerationsTotal.WithLabelValues(tt.status))
			if after-before != 1 {
				t.Errorf("%s counter delta = %v, want 1", tt.status, after-before)
			}
		})
	}
}

func TestGetOrCreateTimeout(t *testing.T) {
	ffmpeg := writeScript(t, t.TempDir(), "ffmpeg", "exec sleep 10\n")
	c := newTestCache(t, ffmpeg)
	c.cfg.Timeout = 100 * time.Millisecond

	before := testutil.ToFloat64(metrics.ThumbnailGenerationsTotal.WithLabelValues("timeout"))

	start := time.Now()
	thumb := c.GetOrCreate(context.Background(), testEntry("slow.mp4"))
	if thumb.Available {
		t.Fatal("expected no thumbnail after timeout")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}

	after := testutil.ToFloat64(metrics.ThumbnailGenerationsTotal.WithLabelValues("timeout"))
	if after-before != 1 {
		t.Errorf("timeout counter delta = %v, want 1", after-before)
	}
}

func TestGetOrCreateConcurrentMissesShareExtraction(t *testing.T) {
	ffmpeg, counter := mockFFmpeg(t, "0.3")
	c := newTestCache(t, ffmpeg)
	entry := testEntry("shared.mp4")

	const callers = 8
	results := make([]library.Thumbnail, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.GetOrCreate(context.Background(), entry)
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if !r.Available {
			t.Errorf("caller %d got no thumbnail", i)
		}
	}
	if n := callCount(t, counter); n != 1 {
		t.Errorf("ffmpeg ran %d times, want 1", n)
	}
}

func TestGetOrCreateCancelledCaller(t *testing.T) {
	ffmpeg, _ := mockFFmpeg(t, "")
	c := newTestCache(t, ffmpeg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if thumb := c.GetOrCreate(ctx, testEntry("c.mp4")); !thumb.Available {
		t.Error("extraction should not depend on the caller's cancellation")
	}
}

func TestRenameAndDelete(t *testing.T) {
	c := newTestCache(t, "ffmpeg")
	old := filepath.Join(c.Dir(), "a_b.mp4.png")
	if err := os.WriteFile(old, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := c.Rename("a/b.mp4", "a/My Clip.mp4"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if c.Cached("a/b.mp4") {
		t.Error("old cache entry still present")
	}
	if !c.Cached("a/My Clip.mp4") {
		t.Error("new cache entry missing")
	}

	if err := c.Rename("missing.mp4", "other.mp4"); err != nil {
		t.Errorf("Rename of missing entry returned %v, want nil", err)
	}

	if err := c.Delete("a/My Clip.mp4"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if c.Cached("a/My Clip.mp4") {
		t.Error("cache entry still present after Delete")
	}

	if err := c.Delete("a/My Clip.mp4"); err != nil {
		t.Errorf("Delete of missing entry returned %v, want nil", err)
	}
}

func TestStats(t *testing.T) {
	c := newTestCache(t, "ffmpeg")

	files := map[string]string{
		"a.mp4.png":    "12345",
		"b_c.mkv.png":  "123",
		".tmp-999.png": "partial",
		"readme.txt":   "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(c.Dir(), name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(c.Dir(), "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	count, size, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if size != 8 {
		t.Errorf("size = %d, want 8", size)
	}
}

func TestStatsMissingDir(t *testing.T) {
	c := newTestCache(t, "ffmpeg")
	if err := os.RemoveAll(c.Dir()); err != nil {
		t.Fatal(err)
	}

	count, size, err := c.Stats()
	if err != nil || count != 0 || size != 0 {
		t.Errorf("Stats() = %d, %d, %v; want 0, 0, nil", count, size, err)
	}
}
