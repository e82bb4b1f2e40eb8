package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"video-library/internal/filesystem"
	"video-library/internal/library"
	"video-library/internal/media"
	"video-library/internal/startup"
	"video-library/internal/workers"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

const maxWorkers = 16

// settings is the subset of the server configuration the tool needs.
type settings struct {
	VideoDir   string
	CacheDir   string
	FFmpegPath string
	Timeout    time.Duration
	Offset     time.Duration
	Width      int
	Height     int
	Workers    int
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, stopping...")
		cancel()
	}()

	config, err := startup.ReadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	s, err := loadSettings(config, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cache, entries, err := open(ctx, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure VIDEO_DIR is set correctly (current: %s)\n", s.VideoDir)
		os.Exit(1)
	}

	switch command {
	case "warm":
		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		r := warm(ctx, os.Stdout, cache, entries, s.Workers, interactive)
		fmt.Printf("Generated %d, already cached %d, failed %d\n", r.Generated, r.Cached, r.Failed)
		if r.Failed > 0 || ctx.Err() != nil {
			os.Exit(1)
		}
	case "status":
		showStatus(os.Stdout, cache, entries)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage()
		os.Exit(1)
	}
}

// sanitizeCommand replaces every character outside [a-zA-Z0-9_-] with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage() {
	fmt.Println("Video Library Thumbnail Warmer")
	fmt.Println("")
	fmt.Println("Usage: thumbwarm <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  warm    - Generate every missing thumbnail")
	fmt.Println("  status  - Show how many videos already have a thumbnail")
	fmt.Println("")
	fmt.Println("Configuration is read like the server's: environment variables and the")
	fmt.Println("optional CONFIG_FILE (VIDEO_DIR, THUMBNAIL_DIR_NAME, THUMBNAIL_OFFSET,")
	fmt.Println("THUMBNAIL_WIDTH, THUMBNAIL_HEIGHT, FFMPEG_PATH, FFMPEG_TIMEOUT).")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Println("  WARM_WORKERS - Concurrent extractions (default: based on CPU count)")
}

// loadSettings copies the thumbnail settings from the server configuration
// so warmed previews match the ones the server generates.
func loadSettings(config *startup.Config, getenv func(string) string) (settings, error) {
	override := 0
	if v := getenv("WARM_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return settings{}, fmt.Errorf("invalid WARM_WORKERS %q", v)
		}
		override = n
	}

	return settings{
		VideoDir:   config.VideoDir,
		CacheDir:   config.CacheDir,
		FFmpegPath: config.FFmpegPath,
		Timeout:    config.FFmpegTimeout,
		Offset:     config.ThumbnailOffset,
		Width:      config.ThumbnailWidth,
		Height:     config.ThumbnailHeight,
		Workers:    workers.ForCPU(override, maxWorkers),
	}, nil
}

// open builds the thumbnail cache and scans the library once.
func open(ctx context.Context, s settings) (*media.ThumbnailCache, []library.Entry, error) {
	translator, err := library.NewTranslator(s.VideoDir, "")
	if err != nil {
		return nil, nil, err
	}
	cacheDir := filepath.Join(translator.Root(), filepath.Base(s.CacheDir))

	cfg := media.DefaultThumbnailConfig(cacheDir)
	cfg.FFmpegPath = s.FFmpegPath
	cfg.Timeout = s.Timeout
	cfg.Offset = s.Offset
	if s.Width > 0 && s.Height > 0 {
		cfg.Width, cfg.Height = s.Width, s.Height
	}
	cfg.Retry = filesystem.DefaultRetryConfig()
	cache := media.NewThumbnailCache(cfg)

	entries, err := library.NewScanner(translator, cacheDir).Scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cache, entries, nil
}

// report summarises a warm run.
type report struct {
	Generated int64
	Cached    int64
	Failed    int64
}

// warm generates the missing thumbnails for entries using up to n
// concurrent extractions. Progress is redrawn in place when interactive.
func warm(ctx context.Context, out io.Writer, cache *media.ThumbnailCache, entries []library.Entry, n int, interactive bool) report {
	var r report
	var done atomic.Int64
	total := len(entries)
	out = &syncWriter{w: out}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(n, 1))

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer func() {
				progress(out, done.Add(1), total, interactive)
			}()

			if cache.Cached(entry.RelativePath) {
				atomic.AddInt64(&r.Cached, 1)
				return nil
			}
			if thumb := cache.GetOrCreate(ctx, entry); thumb.Available {
				atomic.AddInt64(&r.Generated, 1)
			} else {
				atomic.AddInt64(&r.Failed, 1)
				if !interactive {
					fmt.Fprintf(out, "failed: %s\n", entry.RelativePath)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if interactive && total > 0 {
		fmt.Fprintln(out)
	}
	return r
}

// syncWriter serialises writes from concurrent workers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func progress(out io.Writer, done int64, total int, interactive bool) {
	if !interactive {
		return
	}
	line := fmt.Sprintf("[%d/%d] thumbnails", done, total)
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 && len(line) > width {
		line = line[:width]
	}
	fmt.Fprintf(out, "\r%s", line)
}

func showStatus(out io.Writer, cache *media.ThumbnailCache, entries []library.Entry) {
	cached := 0
	for _, e := range entries {
		if cache.Cached(e.RelativePath) {
			cached++
		}
	}
	count, size, err := cache.Stats()
	if err != nil {
		fmt.Fprintf(out, "Warning: could not read cache directory: %v\n", err)
	}

	fmt.Fprintf(out, "Videos:       %d\n", len(entries))
	fmt.Fprintf(out, "With preview: %d\n", cached)
	fmt.Fprintf(out, "Missing:      %d\n", len(entries)-cached)
	fmt.Fprintf(out, "Cache files:  %d (%d bytes) in %s\n", count, size, cache.Dir())
}
