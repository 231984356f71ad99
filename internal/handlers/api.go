package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sales-insights/internal/analytics"
	"sales-insights/internal/errors"
	"sales-insights/internal/observability"
)

const (
	defaultTopProducts = 10
	maxTopProducts     = 100
)

type APIHandlers struct {
	analytics *analytics.Service
	logger    *slog.Logger
}

func NewAPIHandlers(svc *analytics.Service, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: svc,
		logger:    logger,
	}
}

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.KPIs()

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleRevenueTrend(w http.ResponseWriter, r *http.Request) {

	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "daily"
	}
	if interval != "daily" && interval != "monthly" {
		requestID := observability.GetRequestID(r.Context())
		err := errors.Validation(fmt.Sprintf("interval must be daily or monthly, got %q", interval))
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	data := h.analytics.RevenueTrend(interval)

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {

	limit := defaultTopProducts
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTopProducts {
			requestID := observability.GetRequestID(r.Context())
			appErr := errors.Validation(fmt.Sprintf("n must be an integer between 1 and %d", maxTopProducts))
			errors.WriteError(w, h.logger, appErr, requestID)
			return
		}
		limit = n
	}

	data := h.analytics.TopProducts(limit)

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleRegions(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.RegionTotals()

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleSegments(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.Segments()

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleCohorts(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.Cohorts()

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleRetention(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.Retention()

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
