package apihttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"soundstream/internal/domain"
	"soundstream/internal/media"
	"soundstream/internal/metrics"
)

const defaultStreamChunkBytes = 8192

// handleStream serves a song's audio file with HTTP range support so players
// can seek and scrub. It never touches usage counters: play counting is the
// web player's job via /update-play-count.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.songs == nil || s.resolver == nil {
		writeEmptyAudio(w, http.StatusInternalServerError)
		return
	}

	id, err := parseSongID(r.URL.Query().Get("id"))
	if err != nil {
		metrics.StreamsTotal.WithLabelValues("not_found").Inc()
		writeEmptyAudio(w, http.StatusNotFound)
		return
	}

	song, err := s.songs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.StreamsTotal.WithLabelValues("not_found").Inc()
			writeEmptyAudio(w, http.StatusNotFound)
			return
		}
		s.logger.Error("stream song lookup failed",
			slog.Int64("songId", int64(id)),
			slog.String("error", err.Error()),
		)
		metrics.StreamsTotal.WithLabelValues("error").Inc()
		writeEmptyAudio(w, http.StatusInternalServerError)
		return
	}

	resolved, err := s.resolver.Resolve(song.FilePath)
	if err != nil {
		// Stale rows and moved files are routine, not server faults.
		s.logger.Info("stream file unresolved",
			slog.Int64("songId", int64(id)),
			slog.String("storedPath", song.FilePath),
		)
		metrics.StreamsTotal.WithLabelValues("not_found").Inc()
		writeEmptyAudio(w, http.StatusNotFound)
		return
	}

	f, err := os.Open(resolved.Path)
	if err != nil || resolved.Size == 0 {
		if f != nil {
			f.Close()
		}
		metrics.StreamsTotal.WithLabelValues("not_found").Inc()
		writeEmptyAudio(w, http.StatusNotFound)
		return
	}
	defer f.Close()

	s.sniffContainer(f, id, resolved.Path)

	w.Header().Set("Content-Type", media.ContentTypeForPath(resolved.Path))
	w.Header().Set("Accept-Ranges", "bytes")

	if r.Method == http.MethodHead {
		w.Header().Set("Content-Length", strconv.FormatInt(resolved.Size, 10))
		w.WriteHeader(http.StatusOK)
		return
	}

	start, end := int64(0), resolved.Size-1
	partial := false
	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
		rs, re, rangeErr := parseByteRange(rangeHeader, resolved.Size)
		if rangeErr != nil {
			s.logger.Debug("unusable range header, serving full content",
				slog.Int64("songId", int64(id)),
				slog.String("range", truncate(rangeHeader, 64)),
			)
		} else {
			start, end, partial = rs, re, true
		}
	}

	length := end - start + 1
	if partial {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, resolved.Size))
		w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
		w.WriteHeader(http.StatusPartialContent)
		metrics.StreamsTotal.WithLabelValues("partial").Inc()
	} else {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
		w.WriteHeader(http.StatusOK)
		metrics.StreamsTotal.WithLabelValues("full").Inc()
	}

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	if _, err := s.copyFileRange(r.Context(), w, f, start, length); err != nil {
		// Headers are committed; nothing to send the client. Disconnects
		// land here too.
		s.logger.Debug("stream copy interrupted",
			slog.Int64("songId", int64(id)),
			slog.String("error", err.Error()),
		)
	}
}

// sniffContainer classifies the file's leading bytes for diagnostics. A
// signature mismatch is logged and streaming proceeds anyway.
func (s *Server) sniffContainer(f *os.File, id domain.SongID, path string) {
	var prefix [media.SniffLen]byte
	n, _ := io.ReadFull(f, prefix[:])
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return
	}
	if container := media.DetectContainer(prefix[:n]); container == media.ContainerUnknown {
		s.logger.Warn("unrecognized audio signature",
			slog.Int64("songId", int64(id)),
			slog.String("path", path),
		)
	} else {
		s.logger.Debug("audio container detected",
			slog.Int64("songId", int64(id)),
			slog.String("container", string(container)),
		)
	}
}

// copyFileRange streams length bytes starting at offset in bounded chunks,
// checking for client disconnect between chunks so an abort stops disk reads
// immediately. Memory use is O(chunk), not O(file).
func (s *Server) copyFileRange(ctx context.Context, w http.ResponseWriter, f *os.File, offset, length int64) (int64, error) {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}

	chunk := s.streamChunkBytes
	if chunk <= 0 {
		chunk = defaultStreamChunkBytes
	}
	buf := make([]byte, chunk)
	flusher, _ := w.(http.Flusher)

	var written int64
	for written < length {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		n := int64(len(buf))
		if remain := length - written; remain < n {
			n = remain
		}
		readN, readErr := f.Read(buf[:n])
		if readN > 0 {
			wroteN, writeErr := w.Write(buf[:readN])
			written += int64(wroteN)
			metrics.StreamedBytesTotal.Add(float64(wroteN))
			if writeErr != nil {
				return written, writeErr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}
			return written, readErr
		}
	}
	return written, nil
}
