package library

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

// writeFiles creates each relative path under root with small content.
func writeFiles(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte("video"), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func newTestTranslator(t *testing.T, root string) *Translator {
	t.Helper()
	tr, err := NewTranslator(root, "/videos")
	if err != nil {
		t.Fatalf("NewTranslator() error = %v", err)
	}
	return tr
}

type fakeThumbnails struct {
	mu      sync.Mutex
	calls   int32
	missing map[string]bool
	seen    []string
}

func (f *fakeThumbnails) GetOrCreate(_ context.Context, e Entry) Thumbnail {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.seen = append(f.seen, e.RelativePath)
	f.mu.Unlock()
	if f.missing[e.RelativePath] {
		return NoThumbnail
	}
	return ThumbnailAt("/videos/thumbnails/" + e.RelativePath + ".png")
}

type fakeProber struct {
	durations map[string]float64
}

func (f *fakeProber) ProbeDuration(_ context.Context, path string) Duration {
	d, ok := f.durations[filepath.Base(path)]
	if !ok {
		return UnknownDuration
	}
	return DurationOf(d)
}

type fakeCache struct {
	renamed [][2]string
	deleted []string
	err     error
}

func (f *fakeCache) Rename(oldRel, newRel string) error {
	f.renamed = append(f.renamed, [2]string{oldRel, newRel})
	return f.err
}

func (f *fakeCache) Delete(rel string) error {
	f.deleted = append(f.deleted, rel)
	return f.err
}
