package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"soundstream/internal/domain"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveRelativePathUnderRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "uploads", "audio", "7.mp3"), []byte("audio"))

	r := NewResolver(root)
	resolved, err := r.Resolve("uploads/audio/7.mp3")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Size != 5 {
		t.Fatalf("size = %d, want 5", resolved.Size)
	}
	if !filepath.IsAbs(resolved.Path) {
		t.Fatalf("path not absolute: %q", resolved.Path)
	}
}

func TestResolveWindowsSeparators(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "uploads", "audio", "42.mp3"), []byte("x"))

	r := NewResolver(root)
	resolved, err := r.Resolve(`uploads\audio\42.mp3`)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if filepath.Base(resolved.Path) != "42.mp3" {
		t.Fatalf("unexpected path %q", resolved.Path)
	}
}

func TestResolveLeadingSlashTreatedAsRootRelative(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "uploads", "audio", "9.mp3"), []byte("x"))

	r := NewResolver(root)
	if _, err := r.Resolve("/uploads/audio/9.mp3"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
}

func TestResolveBasenameFallbackIntoAudioDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "uploads", "audio", "old.mp3"), []byte("x"))

	// Stored path points at a layout that no longer exists; only the
	// basename survives in the current upload dir.
	r := NewResolver(root)
	resolved, err := r.Resolve("legacy/music/files/old.mp3")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if filepath.Base(resolved.Path) != "old.mp3" {
		t.Fatalf("unexpected path %q", resolved.Path)
	}
}

func TestResolveAbsoluteStoredPath(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	abs := filepath.Join(other, "track.mp3")
	writeFile(t, abs, []byte("x"))

	r := NewResolver(root)
	resolved, err := r.Resolve(abs)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Path != abs {
		t.Fatalf("path = %q, want %q", resolved.Path, abs)
	}
}

func TestResolveMissReturnsFileNotFound(t *testing.T) {
	r := NewResolver(t.TempDir())
	_, err := r.Resolve("uploads/audio/ghost.mp3")
	if !errors.Is(err, domain.ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
}

func TestResolveDirectoryIsNotAMatch(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "uploads", "audio", "5.mp3"), 0o755); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(root)
	if _, err := r.Resolve("uploads/audio/5.mp3"); !errors.Is(err, domain.ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
}

func TestCandidatesDedupeAndSkipEmpty(t *testing.T) {
	r := NewResolver("root")
	got := r.candidates("uploads/audio/1.mp3")
	seen := map[string]struct{}{}
	for _, c := range got {
		if c == "" || c == "." {
			t.Fatalf("empty candidate in %v", got)
		}
		if _, dup := seen[c]; dup {
			t.Fatalf("duplicate candidate %q in %v", c, got)
		}
		seen[c] = struct{}{}
	}
}
