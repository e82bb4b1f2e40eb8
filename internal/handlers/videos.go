package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"video-library/internal/library"
	"video-library/internal/logging"
)

// maxBodyBytes limits mutation request bodies.
const maxBodyBytes = 64 << 10

// VideosResponse is the body of GET /api/videos.
type VideosResponse struct {
	Videos []library.Video `json:"videos"`
}

// RenameRequest is the body of PUT /api/videos/rename.
type RenameRequest struct {
	OldPath string `json:"oldPath"`
	NewName string `json:"newName"`
}

// RenameResponse is returned after a successful rename.
type RenameResponse struct {
	Success bool   `json:"success"`
	NewPath string `json:"newPath"`
	NewURL  string `json:"newUrl"`
}

// DeleteRequest is the body of DELETE /api/videos/delete.
type DeleteRequest struct {
	VideoPath string `json:"videoPath"`
}

// DeleteResponse is returned after a successful delete.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListVideos returns a random sample of videos, or every video whose title
// matches the search parameter.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	search := query.Get("search")

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	videos, err := h.videos.Query(r.Context(), search, limit)
	if err != nil {
		var scanErr *library.ScanError
		switch {
		case errors.Is(err, library.ErrEmptyResult):
			writeJSONError(w, "No videos found", http.StatusNotFound)
		case errors.As(err, &scanErr):
			logging.Error("Library scan failed: %v", err)
			writeJSONError(w, "Failed to load videos", http.StatusInternalServerError)
		default:
			logging.Error("Error fetching videos: %v", err)
			writeJSONError(w, "Failed to load videos", http.StatusInternalServerError)
		}
		return
	}

	writeJSONStatus(w, http.StatusOK, VideosResponse{Videos: videos})
}

// RenameVideo renames a video, keeping its directory and extension.
func (h *Handlers) RenameVideo(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if msg := decodeBody(w, r, &req); msg != "" {
		writeJSONError(w, msg, http.StatusBadRequest)
		return
	}
	if req.OldPath == "" || req.NewName == "" {
		writeJSONError(w, "oldPath and newName are required", http.StatusBadRequest)
		return
	}

	result, err := h.mutator.Rename(r.Context(), req.OldPath, req.NewName)
	if err != nil {
		writeMutationError(w, "rename", req.OldPath, err)
		return
	}

	writeJSONStatus(w, http.StatusOK, RenameResponse{
		Success: true,
		NewPath: result.NewPath,
		NewURL:  result.NewURL,
	})
}

// DeleteVideo removes a video and its cached thumbnail.
func (h *Handlers) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if msg := decodeBody(w, r, &req); msg != "" {
		writeJSONError(w, msg, http.StatusBadRequest)
		return
	}
	if req.VideoPath == "" {
		writeJSONError(w, "videoPath is required", http.StatusBadRequest)
		return
	}

	if err := h.mutator.Delete(r.Context(), req.VideoPath); err != nil {
		writeMutationError(w, "delete", req.VideoPath, err)
		return
	}

	writeJSONStatus(w, http.StatusOK, DeleteResponse{
		Success: true,
		Message: "Video deleted successfully",
	})
}

// decodeBody decodes a JSON request body into v. It returns a client-facing
// message when the body is unusable, or "" on success.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) string {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return "Request body too large"
		case errors.Is(err, io.EOF):
			return "Request body is empty"
		default:
			return "Invalid JSON body"
		}
	}
	return ""
}

// writeMutationError maps mutation errors to status codes.
func writeMutationError(w http.ResponseWriter, op, target string, err error) {
	switch {
	case errors.Is(err, library.ErrInvalidName):
		writeJSONError(w, "Invalid name", http.StatusBadRequest)
	case errors.Is(err, library.ErrInvalidPath):
		writeJSONError(w, "Invalid path", http.StatusBadRequest)
	case errors.Is(err, library.ErrNotFound):
		writeJSONError(w, "Video not found", http.StatusNotFound)
	case errors.Is(err, library.ErrConflict):
		writeJSONError(w, "A file with that name already exists", http.StatusConflict)
	default:
		logging.Error("Failed to %s %s: %v", op, target, err)
		writeJSONError(w, fmt.Sprintf("Failed to %s video", op), http.StatusInternalServerError)
	}
}
