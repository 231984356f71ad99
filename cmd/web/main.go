package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"sales-insights/internal/analytics"
	"sales-insights/internal/config"
	"sales-insights/internal/dataset"
	"sales-insights/internal/export"
	"sales-insights/internal/middleware"
	"sales-insights/internal/observability"
	"sales-insights/internal/server"
	"sales-insights/internal/ui/templates"
)

const (
	renderTimeout   = 10 * time.Second
	dataLoadTimeout = 2 * time.Minute
	cacheMaxAge     = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// loadDataset fills the analytics service from the configured source,
// fetching the remote file or generating sample data when needed.
func loadDataset(ctx context.Context, svc *analytics.Service, cfg *config.Config, logger *slog.Logger) error {
	if _, err := os.Stat(cfg.Data.File); os.IsNotExist(err) && cfg.Data.URL != "" {
		logger.Info("dataset missing, downloading", "url", cfg.Data.URL, "dest", cfg.Data.File)
		if err := dataset.Fetch(ctx, cfg.Data.URL, cfg.Data.File); err != nil {
			return err
		}
	}

	if _, err := os.Stat(cfg.Data.File); err == nil {
		return svc.LoadFile(ctx, cfg.Data.File)
	}

	logger.Info("dataset not found, generating sample data",
		"rows", cfg.Data.SampleRows,
		"seed", cfg.Data.SampleSeed,
	)
	svc.SetRecords(dataset.Sample(cfg.Data.SampleRows, cfg.Data.SampleSeed))
	return nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	svc := analytics.NewService()
	ctx, cancel := context.WithTimeout(context.Background(), dataLoadTimeout)
	defer cancel()

	start := time.Now()
	if err := loadDataset(ctx, svc, cfg, logger); err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("dataset loaded successfully", "duration", time.Since(start))

	exporter := export.New(svc, cfg.Export, logger)

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(svc, exporter, cfg, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service")
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
