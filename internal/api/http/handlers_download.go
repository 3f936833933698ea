package apihttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"soundstream/internal/domain"
	"soundstream/internal/media"
	"soundstream/internal/metrics"
)

// DownloadPacing shapes download transfers to defeat download-accelerator
// heuristics: chunk sizes vary among a small fixed set and chunk groups are
// separated by short random delays. Best-effort obfuscation, not a security
// boundary.
type DownloadPacing struct {
	ChunkSizes  []int         // candidate chunk sizes, one picked per group
	GroupChunks int           // chunks written between delays
	MaxDelay    time.Duration // upper bound for the random inter-group delay
}

func defaultDownloadPacing() DownloadPacing {
	return DownloadPacing{
		ChunkSizes:  []int{4096, 8192, 16384, 32768},
		GroupChunks: 8,
		MaxDelay:    10 * time.Millisecond,
	}
}

// handleDownload serves a song as a forced attachment named after its title
// and attribution, counting the download exactly once per request that
// reaches the streaming stage. The counter is bumped before the first body
// byte, so an aborted transfer still counts — the historical site behavior,
// kept deliberately.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.songs == nil || s.resolver == nil {
		writeError(w, http.StatusInternalServerError, "download not configured")
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
			metrics.DownloadsTotal.WithLabelValues("not_found").Inc()
			writeError(w, http.StatusNotFound, "song not found")
			return
		}
		s.logger.Error("download song lookup failed",
			slog.Int64("songId", int64(id)),
			slog.String("error", err.Error()),
		)
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resolved, err := s.resolver.Resolve(song.FilePath)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("not_found").Inc()
		writeError(w, http.StatusNotFound, "audio file not found")
		return
	}

	f, err := os.Open(resolved.Path)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("not_found").Inc()
		writeError(w, http.StatusNotFound, "audio file not found")
		return
	}
	defer f.Close()

	display := song.Artist
	if s.attribution != nil {
		display = s.attribution.Execute(r.Context(), song).DisplayName
	}
	filename := media.DownloadFilename(song.Title, display)

	// Count before streaming; counting failure must never block delivery.
	if s.usage != nil {
		if value, incErr := s.usage.Execute(r.Context(), id, domain.CounterDownloads); incErr != nil {
			s.logger.Warn("download counter increment failed",
				slog.Int64("songId", int64(id)),
				slog.String("error", incErr.Error()),
			)
			metrics.CounterFailuresTotal.WithLabelValues(string(domain.CounterDownloads)).Inc()
		} else {
			metrics.CounterIncrementsTotal.WithLabelValues(string(domain.CounterDownloads)).Inc()
			s.broadcastUsage(id, domain.CounterDownloads, value)
		}
	}

	s.setDownloadHeaders(w, filename, resolved.Size)
	w.WriteHeader(http.StatusOK)
	metrics.DownloadsTotal.WithLabelValues("ok").Inc()

	if _, err := s.pacedCopy(r.Context(), w, f, resolved.Size); err != nil {
		s.logger.Debug("download copy interrupted",
			slog.Int64("songId", int64(id)),
			slog.String("error", err.Error()),
		)
	}
}

// setDownloadHeaders forces the attachment and strips everything an
// accelerator could use to parallelize: no range support, no caching, a
// generic content type instead of the real audio MIME, connection close.
func (s *Server) setDownloadHeaders(w http.ResponseWriter, filename string, size int64) {
	h := w.Header()
	h.Set("Content-Type", "application/octet-stream")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s",
		filename, url.PathEscape(filename)))
	h.Set("Content-Length", strconv.FormatInt(size, 10))
	h.Set("Content-Transfer-Encoding", "binary")
	h.Set("Accept-Ranges", "none")
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Connection", "close")
}

// pacedCopy writes the whole file using the configured pacing: a chunk size
// drawn from the fixed set per group, a short random sleep between groups,
// and a disconnect check before every read.
func (s *Server) pacedCopy(ctx context.Context, w http.ResponseWriter, f *os.File, size int64) (int64, error) {
	pacing := s.downloadPacing
	if len(pacing.ChunkSizes) == 0 {
		pacing = defaultDownloadPacing()
	}
	if pacing.GroupChunks <= 0 {
		pacing.GroupChunks = 8
	}

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, maxChunkSize(pacing.ChunkSizes))
	chunk := pacing.ChunkSizes[rand.IntN(len(pacing.ChunkSizes))]

	var written int64
	chunksInGroup := 0
	for written < size {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		if chunksInGroup >= pacing.GroupChunks {
			chunksInGroup = 0
			chunk = pacing.ChunkSizes[rand.IntN(len(pacing.ChunkSizes))]
			if pacing.MaxDelay > 0 {
				delay := time.Duration(rand.Int64N(int64(pacing.MaxDelay)))
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return written, ctx.Err()
				case <-timer.C:
				}
			}
		}

		n := int64(chunk)
		if remain := size - written; remain < n {
			n = remain
		}
		readN, readErr := f.Read(buf[:n])
		if readN > 0 {
			wroteN, writeErr := w.Write(buf[:readN])
			written += int64(wroteN)
			metrics.DownloadedBytesTotal.Add(float64(wroteN))
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
		chunksInGroup++
	}
	return written, nil
}

func maxChunkSize(sizes []int) int {
	max := defaultStreamChunkBytes
	for _, size := range sizes {
		if size > max {
			max = size
		}
	}
	return max
}
