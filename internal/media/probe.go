package media

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// TrackInfo is embedded-tag metadata read from an audio file. All fields are
// best effort: files with stripped or corrupt tags yield an error and the
// caller falls back to stored metadata.
type TrackInfo struct {
	Format string `json:"format,omitempty"`
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Year   int    `json:"year,omitempty"`
}

// ProbeTags reads ID3/MP4/FLAC metadata from the file at path.
func ProbeTags(path string) (TrackInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return TrackInfo{}, fmt.Errorf("open for probe: %w", err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return TrackInfo{}, fmt.Errorf("read tags: %w", err)
	}

	return TrackInfo{
		Format: string(meta.Format()),
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
		Genre:  meta.Genre(),
		Year:   meta.Year(),
	}, nil
}
