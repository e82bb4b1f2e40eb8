// Package memory derives the Go heap limit from the container memory limit,
// leaving headroom for the ffmpeg and ffprobe child processes.
package memory

import (
	"math"
	"runtime/debug"
	"strconv"

	"video-library/internal/logging"
)

// DefaultRatio is the share of the container limit given to the Go heap.
const DefaultRatio = 0.80

// Source names where a heap limit came from.
type Source string

const (
	SourceNone        Source = "none"
	SourceGoMemLimit  Source = "GOMEMLIMIT"
	SourceMemoryLimit Source = "MEMORY_LIMIT"
)

// Limit describes the heap limit in effect after Configure.
type Limit struct {
	Source         Source
	ContainerBytes int64
	HeapBytes      int64
	Ratio          float64
}

// Configure applies a heap limit derived from MEMORY_LIMIT (bytes, usually
// injected through the Kubernetes Downward API) and MEMORY_RATIO. An explicit
// GOMEMLIMIT always wins and is only reported. Call it before the server
// starts allocating.
func Configure(getenv func(string) string) Limit {
	if raw := getenv("GOMEMLIMIT"); raw != "" {
		l := Limit{Source: SourceGoMemLimit}
		if current := debug.SetMemoryLimit(-1); current > 0 && current < math.MaxInt64 {
			l.HeapBytes = current
		}
		logging.Info("  GOMEMLIMIT:          %s (from environment)", raw)
		return l
	}

	l, ok := computeLimit(getenv("MEMORY_LIMIT"), getenv("MEMORY_RATIO"))
	if !ok {
		return Limit{Source: SourceNone}
	}
	debug.SetMemoryLimit(l.HeapBytes)
	logging.Info("  GOMEMLIMIT:          %s (%.0f%% of %s)", formatBytes(l.HeapBytes), l.Ratio*100, formatBytes(l.ContainerBytes))
	return l
}

// computeLimit parses the container limit and ratio without touching the
// runtime. Invalid ratios fall back to DefaultRatio.
func computeLimit(rawLimit, rawRatio string) (Limit, bool) {
	if rawLimit == "" {
		return Limit{}, false
	}
	container, err := strconv.ParseInt(rawLimit, 10, 64)
	if err != nil || container <= 0 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", rawLimit)
		return Limit{}, false
	}

	ratio := DefaultRatio
	if rawRatio != "" {
		r, err := strconv.ParseFloat(rawRatio, 64)
		if err != nil || r <= 0 || r > 1 {
			logging.Warn("MEMORY_RATIO %q must be in (0, 1], using %.2f", rawRatio, DefaultRatio)
		} else {
			ratio = r
		}
	}

	return Limit{
		Source:         SourceMemoryLimit,
		ContainerBytes: container,
		HeapBytes:      int64(float64(container) * ratio),
		Ratio:          ratio,
	}, true
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
