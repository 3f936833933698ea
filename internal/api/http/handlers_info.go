package apihttp

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"soundstream/internal/domain"
	"soundstream/internal/media"
)

// tagProbeCacheEntry holds a cached tag read with an expiration time.
type tagProbeCacheEntry struct {
	info      media.TrackInfo
	expiresAt time.Time
}

const tagProbeCacheTTL = 5 * time.Minute

type songInfoResponse struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Artist    string           `json:"artist"`
	Plays     int64            `json:"plays"`
	Downloads int64            `json:"downloads"`
	Cover     string           `json:"cover,omitempty"`
	Tags      *media.TrackInfo `json:"tags,omitempty"`
}

// handleSongInfo returns stored metadata plus best-effort embedded-tag
// metadata read from the resolved file. Tag read failure degrades to stored
// metadata only — the file may be tag-stripped or partially corrupt.
func (s *Server) handleSongInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.songs == nil {
		writeError(w, http.StatusInternalServerError, "store not configured")
		return
	}

	id, err := parseSongID(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid song id")
		return
	}

	song, err := s.songs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "song not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	artist := song.Artist
	if s.attribution != nil {
		artist = s.attribution.Execute(r.Context(), song).DisplayName
	}

	resp := songInfoResponse{
		ID:        int64(song.ID),
		Title:     song.Title,
		Artist:    artist,
		Plays:     song.Plays,
		Downloads: song.Downloads,
		Cover:     song.CoverPath,
	}

	if s.resolver != nil {
		if resolved, resolveErr := s.resolver.Resolve(song.FilePath); resolveErr == nil {
			if info, ok := s.probeTags(id, resolved.Path); ok {
				resp.Tags = &info
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// probeTags reads embedded tags through a TTL cache so repeated info
// requests don't reopen and reparse the file.
func (s *Server) probeTags(id domain.SongID, path string) (media.TrackInfo, bool) {
	s.tagCacheMu.RLock()
	entry, ok := s.tagProbeCache[id]
	s.tagCacheMu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.info, true
	}

	info, err := s.probe(path)
	if err != nil {
		s.logger.Debug("tag probe failed",
			slog.Int64("songId", int64(id)),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return media.TrackInfo{}, false
	}

	s.tagCacheMu.Lock()
	s.tagProbeCache[id] = tagProbeCacheEntry{info: info, expiresAt: time.Now().Add(tagProbeCacheTTL)}
	s.tagCacheMu.Unlock()
	return info, true
}
