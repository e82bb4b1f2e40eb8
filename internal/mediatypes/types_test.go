package mediatypes

import "testing"

func TestIsVideo(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"clip.mp4", true},
		{"clip.MKV", true},
		{"dir/clip.Avi", true},
		{"clip.mov", true},
		{"clip.webm", false},
		{"notes.txt", false},
		{"thumbnail.png", false},
		{"mp4", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVideo(tt.name); got != tt.expected {
				t.Errorf("IsVideo(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"a.mp4", "video/mp4"},
		{"a.MOV", "video/quicktime"},
		{"a.mkv", "video/x-matroska"},
		{"a.avi", "video/x-msvideo"},
		{"a.txt", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetMimeType(tt.name); got != tt.expected {
				t.Errorf("GetMimeType(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestExtensionTablesAgree(t *testing.T) {
	for ext := range VideoExtensions {
		if _, ok := MimeTypes[ext]; !ok {
			t.Errorf("extension %s has no MIME type", ext)
		}
	}
}
