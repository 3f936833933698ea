package apihttp

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"soundstream/internal/domain"
	"soundstream/internal/domain/ports"
	"soundstream/internal/media"
)

// AttributionResolver produces the canonical artist credit for a song.
type AttributionResolver interface {
	Execute(ctx context.Context, song domain.Song) domain.Attribution
}

// UsageIncrementer bumps a usage counter and returns the new value.
type UsageIncrementer interface {
	Execute(ctx context.Context, id domain.SongID, counter domain.Counter) (int64, error)
}

// FileResolver locates a song's audio file from its stored path.
type FileResolver interface {
	Resolve(stored string) (media.ResolvedFile, error)
}

// HealthPinger reports backing-store reachability for the health endpoint.
type HealthPinger interface {
	Ping(ctx context.Context) error
}

// TagProber reads embedded metadata from an audio file.
type TagProber func(path string) (media.TrackInfo, error)

type Server struct {
	songs            ports.SongStore
	resolver         FileResolver
	attribution      AttributionResolver
	usage            UsageIncrementer
	probe            TagProber
	health           HealthPinger
	allowedOrigins   []string
	streamChunkBytes int
	downloadPacing   DownloadPacing
	logger           *slog.Logger
	handler          http.Handler
	wsHub            *wsHub

	tagCacheMu    sync.RWMutex
	tagProbeCache map[domain.SongID]tagProbeCacheEntry
}

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithFileResolver(resolver FileResolver) ServerOption {
	return func(s *Server) {
		s.resolver = resolver
	}
}

func WithAttribution(resolver AttributionResolver) ServerOption {
	return func(s *Server) {
		s.attribution = resolver
	}
}

func WithUsage(usage UsageIncrementer) ServerOption {
	return func(s *Server) {
		s.usage = usage
	}
}

func WithTagProber(probe TagProber) ServerOption {
	return func(s *Server) {
		s.probe = probe
	}
}

func WithHealthPinger(pinger HealthPinger) ServerOption {
	return func(s *Server) {
		s.health = pinger
	}
}

// WithAllowedOrigins configures the CORS allowed origins whitelist.
// When empty (default), any origin is permitted.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithStreamChunkBytes sets the per-chunk read size for range streaming.
func WithStreamChunkBytes(size int) ServerOption {
	return func(s *Server) {
		if size > 0 {
			s.streamChunkBytes = size
		}
	}
}

// WithDownloadPacing overrides the anti-accelerator transfer shaping.
func WithDownloadPacing(pacing DownloadPacing) ServerOption {
	return func(s *Server) {
		s.downloadPacing = pacing
	}
}

func NewServer(songs ports.SongStore, opts ...ServerOption) *Server {
	s := &Server{
		songs:            songs,
		streamChunkBytes: defaultStreamChunkBytes,
		downloadPacing:   defaultDownloadPacing(),
		tagProbeCache:    make(map[domain.SongID]tagProbeCacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.probe == nil {
		s.probe = media.ProbeTags
	}

	s.wsHub = newWSHub(s.logger)
	go s.wsHub.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/stream", s.handleStream)
	mux.HandleFunc("/download", s.handleDownload)
	mux.HandleFunc("/song-info", s.handleSongInfo)
	mux.HandleFunc("/get-download-count", s.handleDownloadCount)
	mux.HandleFunc("/update-download-count", s.handleUpdateDownloadCount)
	mux.HandleFunc("/update-play-count", s.handleUpdatePlayCount)
	mux.HandleFunc("/internal/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.handleWS)

	traced := otelhttp.NewHandler(requestIDMiddleware(loggingMiddleware(s.logger, mux)), "media-delivery",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/internal/health"
		}),
	)
	s.handler = recoveryMiddleware(s.logger, rateLimitMiddleware(100, 200, metricsMiddleware(corsMiddleware(s.allowedOrigins, traced))))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close shuts down the WebSocket hub, disconnecting all clients.
func (s *Server) Close() {
	if s.wsHub != nil {
		s.wsHub.Close()
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Store: "unknown"}
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Store = "unreachable"
		} else {
			resp.Store = "ok"
		}
	}
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
