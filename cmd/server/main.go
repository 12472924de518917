// Draft Studio - complaint drafting server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/draft-studio/internal/api"
	"github.com/ashureev/draft-studio/internal/assistant"
	"github.com/ashureev/draft-studio/internal/client"
	"github.com/ashureev/draft-studio/internal/config"
	"github.com/ashureev/draft-studio/internal/drafting"
	"github.com/ashureev/draft-studio/internal/identity"
	"github.com/ashureev/draft-studio/internal/llm"
	"github.com/ashureev/draft-studio/internal/middleware"
	"github.com/ashureev/draft-studio/internal/preview"
	"github.com/ashureev/draft-studio/internal/store"
	"github.com/ashureev/draft-studio/internal/workspace"
	"github.com/ashureev/draft-studio/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	provider, err := llm.New(ctx, cfg.LLM)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		slog.Warn("No LLM API key configured, serving placeholder drafts", "provider", cfg.LLM.Provider)
		provider = nil
	case err != nil:
		slog.Error("Failed to initialize LLM provider", "error", err)
		os.Exit(1)
	default:
		slog.Info("LLM provider ready", "provider", provider.Name(), "model", provider.Model())
	}
	svc := drafting.NewService(provider)
	drafter := client.New(client.NewLocalTransport(svc))

	renderer, err := preview.NewRenderer()
	if err != nil {
		slog.Error("Failed to initialize preview renderer", "error", err)
		os.Exit(1)
	}
	exporter := preview.NewExporter(renderer, preview.NewRodRasterizer(cfg.Export.ChromeBin), nil, cfg.Export.Timeout)
	defer func() {
		if closeErr := exporter.Close(); closeErr != nil {
			slog.Warn("Failed to close browser", "error", closeErr)
		}
	}()

	conversationLogger, err := assistant.NewConversationLogger(assistant.ConversationLogConfig{
		Enabled:       cfg.ConversationLog.Enabled,
		Dir:           cfg.ConversationLog.Dir,
		GlobalEnabled: cfg.ConversationLog.GlobalEnabled,
		GlobalPath:    cfg.ConversationLog.GlobalPath,
		QueueSize:     cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := conversationLogger.Close(); closeErr != nil {
			slog.Warn("Failed to close conversation logger", "error", closeErr)
		}
	}()

	workspaces := workspace.NewManager(repo, func(userID, sessionID string) *workspace.Coordinator {
		panel := assistant.NewPanel(drafter, conversationLogger, userID, sessionID)
		return workspace.NewCoordinator(drafter, exporter, panel)
	}, cfg.WorkspaceTTL)

	streams := api.NewStreamRegistry()
	workspaces.OnEvict(streams.CloseSession)

	// Initialize handlers.
	baseHandler := api.NewHandler(repo, workspaces, streams, cfg.IsDevelopment())
	healthHandler := api.NewHealthHandler(repo)
	limiter := api.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)
	defer limiter.Stop()
	analyzeHandler := api.NewAnalyzeHandler(svc, limiter, conversationLogger, cfg.MaxRequestBodySize)
	workspaceHandler := api.NewWorkspaceHandler(baseHandler, limiter, cfg.MaxRequestBodySize)
	streamHandler := api.NewStreamHandler(baseHandler, cfg.FrontendURL)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(allowedOrigins(cfg)))

	// Public routes.
	healthHandler.RegisterHealth(r)

	// Everything else carries the anonymous identity.
	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(repo, cfg.IsDevelopment()))
		analyzeHandler.RegisterRoutes(r)
		workspaceHandler.RegisterRoutes(r)
		streamHandler.RegisterRoutes(r)
	})

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// No WriteTimeout: LLM calls and websocket streams outlive any fixed bound.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	workspaces.StartSweeper(ctx, 0)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	streams.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	workspaces.Flush()

	slog.Info("Server stopped successfully")
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.IsDevelopment() || cfg.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{cfg.FrontendURL}
}
