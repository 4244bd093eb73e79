package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	mem "badgekit/adapters/memory"
	redisAdapter "badgekit/adapters/redis"
	sqlxAdapter "badgekit/adapters/sqlx"
	"badgekit/api/httpapi"
	"badgekit/config"
	"badgekit/engine"
	"badgekit/kit"
	"badgekit/realtime"
)

// App aggregates the assembled server components.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Hub       *realtime.Hub
	Evaluator *engine.Evaluator
	Handler   http.Handler
	Server    *http.Server
}

func provideConfig() (*config.Config, error) {
	if path := os.Getenv("BADGEKIT_CONFIG"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideStore(ctx context.Context, cfg *config.Config) (engine.AwardStore, error) {
	return setupStore(ctx, cfg)
}

func provideScores() *mem.Scoreboard {
	// The real content/vote subsystem fronts this in production; the built-in
	// scoreboard keeps a standalone server usable.
	return mem.NewScoreboard()
}

func provideEvaluator(cfg *config.Config, logger *slog.Logger, hub *realtime.Hub, store engine.AwardStore, scores *mem.Scoreboard) (*engine.Evaluator, error) {
	return kit.New(
		kit.WithAwardStore(store),
		kit.WithScores(scores),
		kit.WithThresholds(cfg.Badges.Thresholds()),
		kit.WithRealtime(hub),
		kit.WithLogger(logger),
		kit.WithDispatchMode(engine.DispatchAsync),
	)
}

func provideHandler(ev *engine.Evaluator, hub *realtime.Hub, cfg *config.Config) http.Handler {
	return httpapi.NewMux(ev, hub, httpapi.Options{
		PathPrefix:      cfg.Server.PathPrefix,
		AllowCORSOrigin: cfg.Server.CORSOrigin,
		APIKeys:         cfg.Server.APIKeys,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	out := os.Stdout
	if cfg.Logging.Output == "stderr" {
		out = os.Stderr
	}

	var handler slog.Handler
	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupStore creates the award store adapter selected by configuration.
func setupStore(ctx context.Context, cfg *config.Config) (engine.AwardStore, error) {
	switch cfg.Storage.Adapter {
	case "memory":
		return mem.NewAwardStore(), nil
	case "redis":
		return redisAdapter.New(cfg.Storage.Redis)
	case "sql":
		store, err := sqlxAdapter.New(cfg.Storage.SQL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Storage.Adapter)
	}
}
