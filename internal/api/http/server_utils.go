package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"soundstream/internal/domain"
)

// errorResponse is the flat JSON error shape the site's fetch calls and
// download managers expect.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeEmptyAudio answers a failed stream request with an audio-typed,
// zero-length body. The client is an <audio> element, not a script: an HTML
// or JSON error body would either break decoding or fail silently.
func writeEmptyAudio(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(status)
}

func parseSongID(value string) (domain.SongID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, errors.New("missing id")
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid id")
	}
	return domain.SongID(parsed), nil
}

var errUnusableRange = errors.New("unusable range")

// parseByteRange parses "bytes=<start>-<end>" (end optional) against the
// file size. Anything malformed or out of bounds — including an end past the
// last byte — returns errUnusableRange, and the caller degrades to a full
// response rather than erroring; real-world audio clients send sloppy
// ranges and expect the server to cope.
func parseByteRange(value string, size int64) (int64, int64, error) {
	if size <= 0 {
		return 0, 0, errUnusableRange
	}

	value = strings.TrimSpace(value)
	if !strings.HasPrefix(strings.ToLower(value), "bytes=") {
		return 0, 0, errUnusableRange
	}

	spec := strings.TrimSpace(value[len("bytes="):])
	if spec == "" || strings.Contains(spec, ",") {
		return 0, 0, errUnusableRange
	}

	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, errUnusableRange
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)
	if startStr == "" {
		return 0, 0, errUnusableRange
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, errUnusableRange
	}

	if endStr == "" {
		return start, size - 1, nil
	}

	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < start || end >= size {
		return 0, 0, errUnusableRange
	}
	return start, end, nil
}
