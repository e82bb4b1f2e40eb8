package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"video-library/internal/library"
)

type fakeQuerier struct {
	videos     []library.Video
	err        error
	lastSearch string
	lastLimit  int
}

func (f *fakeQuerier) Query(_ context.Context, search string, limit int) ([]library.Video, error) {
	f.lastSearch = search
	f.lastLimit = limit
	return f.videos, f.err
}

type fakeMutator struct {
	renameResult library.RenameResult
	err          error
	renamed      [][2]string
	deleted      []string
}

func (f *fakeMutator) Rename(_ context.Context, oldLocator, newName string) (library.RenameResult, error) {
	f.renamed = append(f.renamed, [2]string{oldLocator, newName})
	return f.renameResult, f.err
}

func (f *fakeMutator) Delete(_ context.Context, locator string) error {
	f.deleted = append(f.deleted, locator)
	return f.err
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	msg, ok := body["error"]
	if !ok {
		t.Fatalf("response has no error field: %s", rec.Body.String())
	}
	return msg
}

func TestListVideos(t *testing.T) {
	thumb := "/videos/thumbnails/a_b.mp4.png"
	q := &fakeQuerier{videos: []library.Video{
		{
			Entry: library.Entry{
				Filename:     "b.mp4",
				Title:        "b",
				RelativePath: "a/b.mp4",
				URL:          "/videos/a/b.mp4",
			},
			ThumbnailURL: &thumb,
			Duration:     12.5,
		},
	}}
	h := New(q, &fakeMutator{}, Status{})

	req := httptest.NewRequest(http.MethodGet, "/api/videos?search=%20B%20&limit=5", nil)
	rec := httptest.NewRecorder()
	h.ListVideos(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if q.lastSearch != " B " || q.lastLimit != 5 {
		t.Errorf("Query(%q, %d), want (\" B \", 5)", q.lastSearch, q.lastLimit)
	}

	want := `{"videos":[{"filename":"b.mp4","title":"b","relativePath":"a/b.mp4","url":"/videos/a/b.mp4","thumbnailUrl":"/videos/thumbnails/a_b.mp4.png","duration":12.5}]}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s\nwant   %s", got, want)
	}
}

func TestListVideosDefaultLimit(t *testing.T) {
	q := &fakeQuerier{videos: []library.Video{{}}}
	h := New(q, &fakeMutator{}, Status{})

	rec := httptest.NewRecorder()
	h.ListVideos(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if q.lastLimit != 0 {
		t.Errorf("limit = %d, want 0 (service default)", q.lastLimit)
	}
}

func TestListVideosErrors(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		err    error
		status int
	}{
		{"empty result", "/api/videos?search=nonexistent-term-xyz", library.ErrEmptyResult, http.StatusNotFound},
		{"scan failure", "/api/videos", &library.ScanError{Root: "/videos", Err: os.ErrNotExist}, http.StatusInternalServerError},
		{"other failure", "/api/videos", errors.New("boom"), http.StatusInternalServerError},
		{"invalid limit", "/api/videos?limit=ten", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&fakeQuerier{err: tt.err}, &fakeMutator{}, Status{})

			rec := httptest.NewRecorder()
			h.ListVideos(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if msg := decodeError(t, rec); msg == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestRenameVideo(t *testing.T) {
	m := &fakeMutator{renameResult: library.RenameResult{
		OldPath: "a/b.mp4",
		NewPath: "a/My Clip.mp4",
		NewURL:  "/videos/a/My Clip.mp4",
	}}
	h := New(&fakeQuerier{}, m, Status{})

	body := `{"oldPath": "/videos/a/b.mp4", "newName": "My Clip!!"}`
	rec := httptest.NewRecorder()
	h.RenameVideo(rec, httptest.NewRequest(http.MethodPut, "/api/videos/rename", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(m.renamed) != 1 || m.renamed[0] != [2]string{"/videos/a/b.mp4", "My Clip!!"} {
		t.Errorf("Rename calls = %v", m.renamed)
	}

	var resp RenameResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := RenameResponse{Success: true, NewPath: "a/My Clip.mp4", NewURL: "/videos/a/My Clip.mp4"}
	if resp != want {
		t.Errorf("response = %+v, want %+v", resp, want)
	}
}

func TestDeleteVideo(t *testing.T) {
	m := &fakeMutator{}
	h := New(&fakeQuerier{}, m, Status{})

	rec := httptest.NewRecorder()
	h.DeleteVideo(rec, httptest.NewRequest(http.MethodDelete, "/api/videos/delete",
		strings.NewReader(`{"videoPath": "/videos/c.MKV"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(m.deleted) != 1 || m.deleted[0] != "/videos/c.MKV" {
		t.Errorf("Delete calls = %v", m.deleted)
	}

	var resp DeleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Message == "" {
		t.Errorf("response = %+v", resp)
	}
}

func TestMutationErrors(t *testing.T) {
	errs := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: %q", library.ErrInvalidName, "!!!"), http.StatusBadRequest},
		{library.ErrInvalidPath, http.StatusBadRequest},
		{fmt.Errorf("%w: x.mp4", library.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: y.mp4", library.ErrConflict), http.StatusConflict},
		{errors.New("permission denied"), http.StatusInternalServerError},
	}

	for _, tt := range errs {
		t.Run("rename/"+tt.err.Error(), func(t *testing.T) {
			h := New(&fakeQuerier{}, &fakeMutator{err: tt.err}, Status{})
			rec := httptest.NewRecorder()
			h.RenameVideo(rec, httptest.NewRequest(http.MethodPut, "/api/videos/rename",
				strings.NewReader(`{"oldPath": "x.mp4", "newName": "y"}`)))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			decodeError(t, rec)
		})

		t.Run("delete/"+tt.err.Error(), func(t *testing.T) {
			h := New(&fakeQuerier{}, &fakeMutator{err: tt.err}, Status{})
			rec := httptest.NewRecorder()
			h.DeleteVideo(rec, httptest.NewRequest(http.MethodDelete, "/api/videos/delete",
				strings.NewReader(`{"videoPath": "x.mp4"}`)))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			decodeError(t, rec)
		})
	}
}

func TestMutationBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		handler func(*Handlers) http.HandlerFunc
		body    string
	}{
		{"rename invalid json", func(h *Handlers) http.HandlerFunc { return h.RenameVideo }, `{"oldPath":`},
		{"rename empty body", func(h *Handlers) http.HandlerFunc { return h.RenameVideo }, ``},
		{"rename missing name", func(h *Handlers) http.HandlerFunc { return h.RenameVideo }, `{"oldPath": "a.mp4"}`},
		{"delete missing path", func(h *Handlers) http.HandlerFunc { return h.DeleteVideo }, `{}`},
		{"delete oversized body", func(h *Handlers) http.HandlerFunc { return h.DeleteVideo },
			`{"videoPath": "` + strings.Repeat("a", maxBodyBytes) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMutator{}
			h := New(&fakeQuerier{}, m, Status{})

			rec := httptest.NewRecorder()
			tt.handler(h)(rec, httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			decodeError(t, rec)
			if len(m.renamed)+len(m.deleted) != 0 {
				t.Error("mutator should not be called for a bad request")
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name   string
		status Status
		code   int
		want   string
	}{
		{"healthy", Status{VideoDir: root, ThumbnailsOn: true, FFmpegAvailable: true, FFprobeAvailable: true}, http.StatusOK, statusHealthy},
		{"missing ffprobe", Status{VideoDir: root, ThumbnailsOn: true, FFmpegAvailable: true}, http.StatusOK, statusDegraded},
		{"missing root", Status{VideoDir: root + "/missing", FFmpegAvailable: true, FFprobeAvailable: true}, http.StatusServiceUnavailable, statusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&fakeQuerier{}, &fakeMutator{}, tt.status)

			rec := httptest.NewRecorder()
			h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.code {
				t.Errorf("status code = %d, want %d", rec.Code, tt.code)
			}
			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != tt.want {
				t.Errorf("status = %q, want %q", resp.Status, tt.want)
			}
			if resp.GoVersion == "" || resp.NumCPU == 0 {
				t.Error("system info missing")
			}
		})
	}
}

func TestReadinessCheck(t *testing.T) {
	root := t.TempDir()

	rec := httptest.NewRecorder()
	New(&fakeQuerier{}, &fakeMutator{}, Status{VideoDir: root}).
		ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready root: status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	New(&fakeQuerier{}, &fakeMutator{}, Status{VideoDir: root + "/missing"}).
		ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("missing root: status = %d, want 503", rec.Code)
	}
}

func TestLivenessCheck(t *testing.T) {
	h := New(&fakeQuerier{}, &fakeMutator{}, Status{})

	rec := httptest.NewRecorder()
	h.LivenessCheck(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "alive") {
		t.Errorf("GET /livez = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.LivenessCheck(rec, httptest.NewRequest(http.MethodHead, "/livez", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("HEAD /livez = %d with %d body bytes", rec.Code, rec.Body.Len())
	}
}

func TestGetVersion(t *testing.T) {
	h := New(&fakeQuerier{}, &fakeMutator{}, Status{})

	rec := httptest.NewRecorder()
	h.GetVersion(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q", cc)
	}
	var info map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info["version"] == "" || info["goVersion"] == "" {
		t.Errorf("missing build info: %v", info)
	}
}
