package media

import (
	"os"
	"path/filepath"
	"strings"

	"soundstream/internal/domain"
)

// ResolvedFile is the ephemeral result of path resolution: an absolute
// location that existed and was readable at probe time.
type ResolvedFile struct {
	Path string
	Size int64
}

// Resolver locates a song's audio file on disk from its stored path. Stored
// paths come from years of uploads across layout changes: some absolute,
// some relative, some with Windows separators. The candidate list is
// intentionally small and fixed, matching the known historical layouts.
type Resolver struct {
	// Root is the site root all relative candidates are joined against.
	Root string
	// AudioDir is the upload directory tried for basename-only lookups,
	// relative to Root.
	AudioDir string
}

const defaultAudioDir = "uploads/audio"

func NewResolver(root string) *Resolver {
	return &Resolver{Root: root, AudioDir: defaultAudioDir}
}

// Resolve returns the first candidate location that exists, is a regular
// file and is readable. A miss is domain.ErrFileNotFound: stale rows and
// moved files are an expected condition, not a fault.
func (r *Resolver) Resolve(stored string) (ResolvedFile, error) {
	for _, candidate := range r.candidates(stored) {
		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		f, err := os.Open(candidate)
		if err != nil {
			continue
		}
		f.Close()
		abs := candidate
		if a, err := filepath.Abs(candidate); err == nil {
			abs = a
		}
		return ResolvedFile{Path: abs, Size: info.Size()}, nil
	}
	return ResolvedFile{}, domain.ErrFileNotFound
}

func (r *Resolver) candidates(stored string) []string {
	normalized := strings.ReplaceAll(strings.TrimSpace(stored), "\\", "/")
	trimmed := strings.TrimPrefix(normalized, "/")

	audioDir := r.AudioDir
	if audioDir == "" {
		audioDir = defaultAudioDir
	}

	raw := []string{
		normalized,
		filepath.Join(r.Root, filepath.FromSlash(trimmed)),
		filepath.Join(r.Root, filepath.FromSlash(audioDir), filepath.Base(trimmed)),
		stored,
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if strings.TrimSpace(c) == "" || c == "." {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
