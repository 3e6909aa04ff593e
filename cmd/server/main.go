package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/curricuforge/internal/ai"
	"github.com/p-n-ai/curricuforge/internal/curriculum"
	"github.com/p-n-ai/curricuforge/internal/generation"
	"github.com/p-n-ai/curricuforge/internal/live"
	"github.com/p-n-ai/curricuforge/internal/platform/cache"
	"github.com/p-n-ai/curricuforge/internal/platform/config"
	"github.com/p-n-ai/curricuforge/internal/platform/database"
	"github.com/p-n-ai/curricuforge/internal/report"
	"github.com/p-n-ai/curricuforge/internal/session"
	"github.com/p-n-ai/curricuforge/internal/transport/rest"
	"github.com/p-n-ai/curricuforge/internal/workspace"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	app, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// app is the wired server and the connections it owns.
type app struct {
	handler http.Handler
	engine  *workspace.Engine
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	checks := map[string]rest.ReadinessCheck{}

	var db *database.DB
	if cfg.Database.Enabled {
		var err error
		db, err = database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		checks["database"] = db.HealthCheck
	}

	var redisCache *cache.Cache
	if cfg.Cache.Enabled {
		var err error
		redisCache, err = cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = redisCache.Close() })
		checks["cache"] = redisCache.HealthCheck
	}

	store, err := newSessionStore(cfg.Session, db, redisCache)
	if err != nil {
		a.Close()
		return nil, err
	}

	router, err := newAIRouter(cfg.AI)
	if err != nil {
		a.Close()
		return nil, err
	}

	hub := live.NewHub(live.WithOriginPatterns(cfg.Live.OriginPatterns...))
	events := workspace.MultiEventLogger{hub}
	if db != nil {
		events = append(events, workspace.NewPostgresEventLogger(db.Pool))
	}

	a.engine = workspace.NewEngine(workspace.EngineConfig{
		Generator: generation.New(router, generation.WithMaxTokens(cfg.AI.MaxTokens)),
		Store:     store,
		Events:    events,
		Timeout:   cfg.AI.Timeout,
	})
	if err := a.engine.Restore(ctx); err != nil {
		slog.Warn("session state not restored", "error", err)
	}
	if err := seed(a.engine, cfg.CurriculumPath); err != nil {
		a.Close()
		return nil, err
	}

	a.handler = rest.NewRouter(&rest.Container{
		Engine:     a.engine,
		Tokens:     rest.NewTokens(cfg.Auth.SessionSecret, cfg.Auth.TokenTTL),
		CookieName: cfg.Auth.CookieName,
		Paginator:  report.NewA4Paginator(),
		Usage:      router,
		Live:       hub,
		Checks:     checks,
	})
	return a, nil
}

// newLogger builds the process logger from the log settings.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// newAIRouter registers every configured provider and applies task routes.
// Google is registered first, so it serves unrouted tasks when configured.
func newAIRouter(cfg config.AIConfig) (*ai.Router, error) {
	router := ai.NewRouter()
	client := &http.Client{Timeout: cfg.Timeout}

	if cfg.Google.APIKey != "" {
		router.Register(config.ProviderGoogle, ai.NewGoogleProvider(cfg.Google.APIKey,
			ai.WithGoogleBaseURL(cfg.Google.BaseURL),
			ai.WithGoogleModel(cfg.Google.Model),
			ai.WithGoogleHTTPClient(client),
		))
	}
	if cfg.OpenAI.APIKey != "" {
		router.Register(config.ProviderOpenAI, ai.NewOpenAIProvider(cfg.OpenAI.APIKey,
			ai.WithBaseURL(cfg.OpenAI.BaseURL),
			ai.WithModel(cfg.OpenAI.Model),
			ai.WithHTTPClient(client),
		))
	}
	if !router.HasProvider() {
		return nil, ai.ErrNoProvider
	}

	for task, name := range map[ai.TaskType]string{
		ai.TaskCurriculum: cfg.CurriculumProvider,
		ai.TaskQuiz:       cfg.QuizProvider,
	} {
		if name == "" {
			continue
		}
		if err := router.Route(task, name); err != nil {
			return nil, err
		}
	}
	return router, nil
}

// newSessionStore picks the session backend named in cfg.
func newSessionStore(cfg config.SessionConfig, db *database.DB, c *cache.Cache) (session.Store, error) {
	switch cfg.Store {
	case config.StoreRedis:
		if c == nil {
			return nil, fmt.Errorf("session store %q needs the cache", cfg.Store)
		}
		return session.NewRedisStore(c.Client, cfg.KeyPrefix), nil
	case config.StorePostgres:
		if db == nil {
			return nil, fmt.Errorf("session store %q needs the database", cfg.Store)
		}
		return session.NewPostgresStore(db.Pool)
	case config.StoreMemory, "":
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

// seed adds the curricula found under dir to the history.
func seed(engine *workspace.Engine, dir string) error {
	if dir == "" {
		return nil
	}
	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		return err
	}
	if n := engine.Seed(loader.Documents()); n > 0 {
		slog.Info("seeded curricula", "dir", dir, "added", n)
	}
	return nil
}
