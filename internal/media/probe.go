package media

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"video-library/internal/library"
	"video-library/internal/logging"
	"video-library/internal/metrics"
)

// Prober reads video durations with ffprobe.
type Prober struct {
	ffprobePath string
	timeout     time.Duration
}

// DefaultProbeTimeout bounds a probe when no positive timeout is set.
const DefaultProbeTimeout = 10 * time.Second

// NewProber creates a Prober. timeout bounds each ffprobe run.
func NewProber(ffprobePath string, timeout time.Duration) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration returns the duration of the video at path. Any failure
// yields library.UnknownDuration.
func (p *Prober) ProbeDuration(ctx context.Context, path string) library.Duration {
	start := time.Now()
	seconds, err := p.probe(ctx, path)
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		status := "error"
		if errors.Is(err, errTimeout) {
			status = "timeout"
		}
		metrics.ProbeTotal.WithLabelValues(status).Inc()
		logging.Debug("Probe: duration unavailable for %s: %v", path, err)
		return library.UnknownDuration
	}

	metrics.ProbeTotal.WithLabelValues("success").Inc()
	return library.DurationOf(seconds)
}

func (p *Prober) probe(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := runTool(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return 0, err
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, err
	}
	if parsed.Format.Duration == "" {
		return 0, errors.New("no duration in ffprobe output")
	}

	seconds, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil {
		return 0, err
	}
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, errors.New("invalid duration " + parsed.Format.Duration)
	}
	return seconds, nil
}
