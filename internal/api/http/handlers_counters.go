package apihttp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"soundstream/internal/domain"
	"soundstream/internal/metrics"
)

type counterUpdateRequest struct {
	SongID int64 `json:"song_id"`
}

// handleDownloadCount reports a song's download counter without touching it.
func (s *Server) handleDownloadCount(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"downloads": song.Downloads,
	})
}

func (s *Server) handleUpdateDownloadCount(w http.ResponseWriter, r *http.Request) {
	s.handleCounterUpdate(w, r, domain.CounterDownloads)
}

func (s *Server) handleUpdatePlayCount(w http.ResponseWriter, r *http.Request) {
	s.handleCounterUpdate(w, r, domain.CounterPlays)
}

// handleCounterUpdate increments a usage counter and returns the new value.
// These are the thin JSON wrappers the web player calls from its progress
// and download-complete hooks.
func (s *Server) handleCounterUpdate(w http.ResponseWriter, r *http.Request, counter domain.Counter) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.usage == nil {
		writeError(w, http.StatusInternalServerError, "counter not configured")
		return
	}

	var req counterUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SongID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid song_id")
		return
	}
	id := domain.SongID(req.SongID)

	value, err := s.usage.Execute(r.Context(), id, counter)
	if err != nil {
		metrics.CounterFailuresTotal.WithLabelValues(string(counter)).Inc()
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "song not found")
			return
		}
		s.logger.Error("counter update failed",
			slog.Int64("songId", req.SongID),
			slog.String("counter", string(counter)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	metrics.CounterIncrementsTotal.WithLabelValues(string(counter)).Inc()
	s.broadcastUsage(id, counter, value)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		string(counter): value,
	})
}

// broadcastUsage pushes a live counter update to WebSocket subscribers so
// open pages can refresh play/download counts without polling.
func (s *Server) broadcastUsage(id domain.SongID, counter domain.Counter, value int64) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.Broadcast("usage", usageEvent{
		SongID:  int64(id),
		Counter: string(counter),
		Value:   value,
	})
}

type usageEvent struct {
	SongID  int64  `json:"songId"`
	Counter string `json:"counter"`
	Value   int64  `json:"value"`
}
