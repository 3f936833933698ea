package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apihttp "soundstream/internal/api/http"
	"soundstream/internal/app"
	"soundstream/internal/media"
	"soundstream/internal/metrics"
	mongorepo "soundstream/internal/repository/mongo"
	"soundstream/internal/telemetry"
	"soundstream/internal/usecase"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "media-delivery")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "media-delivery"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.String("mediaRoot", cfg.MediaRoot),
		slog.String("audioDir", cfg.AudioDir),
		slog.Int("streamChunkBytes", cfg.StreamChunkBytes),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	defer cancel()

	mongoClient, err := mongorepo.Connect(ctx, cfg.MongoURI, options.Client().SetMonitor(otelmongo.NewMonitor()))
	if err != nil {
		logger.Error("mongo connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("mongo ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	songs := mongorepo.NewSongRepository(mongoClient, cfg.MongoDatabase)
	users := mongorepo.NewUserRepository(mongoClient, cfg.MongoDatabase)
	collaborators := mongorepo.NewCollaboratorRepository(mongoClient, cfg.MongoDatabase)
	stats := mongorepo.NewArtistStatsRepository(mongoClient, cfg.MongoDatabase)

	if err := songs.EnsureIndexes(ctx); err != nil {
		logger.Warn("mongo ensure indexes failed", slog.String("error", err.Error()))
	}
	if err := collaborators.EnsureIndexes(ctx); err != nil {
		logger.Warn("mongo ensure indexes failed", slog.String("error", err.Error()))
	}

	resolver := media.NewResolver(cfg.MediaRoot)
	if cfg.AudioDir != "" {
		resolver.AudioDir = cfg.AudioDir
	}

	attributionUC := usecase.ResolveAttribution{Users: users, Collaborators: collaborators, Logger: logger}
	usageUC := usecase.IncrementUsage{Songs: songs, Collaborators: collaborators, Stats: stats, Logger: logger}

	pacing := apihttp.DownloadPacing{
		ChunkSizes:  []int{4096, 8192, 16384, 32768},
		GroupChunks: 8,
		MaxDelay:    time.Duration(cfg.DownloadDelayMs) * time.Millisecond,
	}

	handler := apihttp.NewServer(songs,
		apihttp.WithLogger(logger),
		apihttp.WithFileResolver(resolver),
		apihttp.WithAttribution(attributionUC),
		apihttp.WithUsage(usageUC),
		apihttp.WithHealthPinger(mongoPinger{client: mongoClient}),
		apihttp.WithAllowedOrigins(cfg.CORSAllowedOrigins),
		apihttp.WithStreamChunkBytes(cfg.StreamChunkBytes),
		apihttp.WithDownloadPacing(pacing),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("server started", slog.String("addr", cfg.HTTPAddr))

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	handler.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", slog.String("error", err.Error()))
	}
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		logger.Warn("mongo disconnect error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

type mongoPinger struct {
	client *mongo.Client
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
