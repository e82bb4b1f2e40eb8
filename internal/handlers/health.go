package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"time"

	"video-library/internal/startup"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Dependencies
	LibraryReadable bool   `json:"libraryReadable"`
	LibraryError    string `json:"libraryError,omitempty"`
	Thumbnails      bool   `json:"thumbnails"`
	FFmpeg          bool   `json:"ffmpeg"`
	FFprobe         bool   `json:"ffprobe"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// checkLibrary reports whether the library root can be listed.
func (h *Handlers) checkLibrary() error {
	f, err := os.Open(h.status.VideoDir)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", h.status.VideoDir)
	}
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// HealthCheck returns the health status of the service. A missing tool
// degrades the service; an unreadable library makes it unhealthy.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	libErr := h.checkLibrary()

	response := HealthResponse{
		Ready:           libErr == nil,
		Version:         startup.Version,
		Uptime:          time.Since(h.startTime).Round(time.Second).String(),
		LibraryReadable: libErr == nil,
		Thumbnails:      h.status.ThumbnailsOn && h.status.FFmpegAvailable,
		FFmpeg:          h.status.FFmpegAvailable,
		FFprobe:         h.status.FFprobeAvailable,
		GoVersion:       runtime.Version(),
		NumCPU:          runtime.NumCPU(),
		NumGoroutine:    runtime.NumGoroutine(),
	}

	code := http.StatusOK
	switch {
	case libErr != nil:
		response.Status = statusUnhealthy
		response.LibraryError = libErr.Error()
		code = http.StatusServiceUnavailable
	case !response.FFmpeg || !response.FFprobe:
		response.Status = statusDegraded
	default:
		response.Status = statusHealthy
	}

	writeJSONStatus(w, code, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the library root is readable
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if err := h.checkLibrary(); err != nil {
		writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
		})
		return
	}
	writeJSONStatus(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
