package server

import (
	"log/slog"
	"net/http"

	"sales-insights/internal/analytics"
	"sales-insights/internal/config"
	"sales-insights/internal/export"
	"sales-insights/internal/handlers"
)

type Server struct {
	analytics     *analytics.Service
	mux           *http.ServeMux
	logger        *slog.Logger
	apiHandlers   *handlers.APIHandlers
	chartHandlers *handlers.ChartHandlers
	sseHandlers   *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(svc *analytics.Service, exporter *export.Exporter, cfg *config.Config, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:     svc,
		mux:           http.NewServeMux(),
		logger:        logger,
		apiHandlers:   handlers.NewAPIHandlers(svc, logger),
		chartHandlers: handlers.NewChartHandlers(svc, exporter, cfg.Export, logger),
		sseHandlers:   handlers.NewSSEHandlers(svc, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/kpis", s.apiHandlers.HandleKPIs)
	s.mux.HandleFunc("GET /api/revenue-trend", s.apiHandlers.HandleRevenueTrend)
	s.mux.HandleFunc("GET /api/top-products", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/regions", s.apiHandlers.HandleRegions)
	s.mux.HandleFunc("GET /api/segments", s.apiHandlers.HandleSegments)
	s.mux.HandleFunc("GET /api/cohorts", s.apiHandlers.HandleCohorts)
	s.mux.HandleFunc("GET /api/retention", s.apiHandlers.HandleRetention)

	// Chart rendering and batch export
	s.mux.HandleFunc("GET /charts/{name}", s.chartHandlers.HandleChart)
	s.mux.HandleFunc("POST /api/export", s.chartHandlers.HandleExport)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/kpis", s.sseHandlers.HandleKPIs)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
