package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"sales-insights/internal/analytics"
	"sales-insights/internal/charts"
	"sales-insights/internal/config"
	"sales-insights/internal/errors"
	"sales-insights/internal/export"
	"sales-insights/internal/observability"
)

type ChartHandlers struct {
	analytics *analytics.Service
	renderer  *charts.Renderer
	exporter  *export.Exporter
	cfg       config.ExportConfig
	logger    *slog.Logger
}

func NewChartHandlers(svc *analytics.Service, exporter *export.Exporter, cfg config.ExportConfig, logger *slog.Logger) *ChartHandlers {
	return &ChartHandlers{
		analytics: svc,
		renderer:  charts.NewRenderer(),
		exporter:  exporter,
		cfg:       cfg,
		logger:    logger,
	}
}

// HandleChart renders a named chart as PNG. Width, height, and scale come
// from query parameters with configured defaults.
func (h *ChartHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	name := strings.TrimSuffix(r.PathValue("name"), ".png")

	spec, summary, ok := h.specFor(name)
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound(fmt.Sprintf("unknown chart %q", name)), requestID)
		return
	}

	opts := charts.Options{
		Width:  h.cfg.Width,
		Height: h.cfg.Height,
		Scale:  h.cfg.Scale,
	}
	if summary {
		opts.Width = h.cfg.SummaryWidth
		opts.Height = h.cfg.SummaryHeight
	}
	if err := overrideFromQuery(r, &opts); err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	if err := opts.Validate(); err != nil {
		errors.WriteError(w, h.logger, errors.Validation(err.Error()), requestID)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(spec, opts, &buf); err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "failed to render chart"), requestID)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// HandleExport runs a batch export to the configured output directory.
// Mode is "quick" (default) or "full".
func (h *ChartHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "quick"
	}

	var (
		files []string
		err   error
	)
	switch mode {
	case "quick":
		files, err = h.exporter.Quick(r.Context(), "")
	case "full":
		files, err = h.exporter.Full(r.Context(), "")
	default:
		appErr := errors.Validation(fmt.Sprintf("mode must be quick or full, got %q", mode))
		errors.WriteError(w, h.logger, appErr, requestID)
		return
	}
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "export failed"), requestID)
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"mode":  mode,
		"files": files,
	})
}

func (h *ChartHandlers) specFor(name string) (spec charts.Spec, summary bool, ok bool) {
	switch name {
	case "sales_trends":
		return charts.SalesTrendSpec(h.analytics.RevenueTrend("daily")), false, true
	case "product_performance":
		return charts.TopProductsSpec(h.analytics.TopProducts(defaultTopProducts)), false, true
	case "kpi_dashboard":
		return charts.KPIDashboardSpec(h.analytics.KPIs()), false, true
	case "geographic_performance":
		return charts.RegionHeatmapSpec(h.analytics.RegionTotals()), false, true
	case "customer_segmentation":
		return charts.SegmentsSpec(h.analytics.Segments()), false, true
	case "customer_retention":
		return charts.RetentionSpec(h.analytics.Retention()), false, true
	case "cohort_heatmap":
		return charts.CohortHeatmapSpec(h.analytics.Cohorts()), false, true
	case "revenue_distribution":
		return charts.RevenueDistributionSpec(h.analytics.RevenueTrend("monthly")), false, true
	case "summary_dashboard":
		return charts.SummarySpec(
			h.analytics.KPIs(),
			h.analytics.RevenueTrend("monthly"),
			h.analytics.TopProducts(defaultTopProducts),
			h.analytics.Segments(),
			h.analytics.RegionTotals(),
		), true, true
	}
	return charts.Spec{}, false, false
}

func overrideFromQuery(r *http.Request, opts *charts.Options) *errors.AppError {
	for _, p := range []struct {
		key  string
		dest *int
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"scale", &opts.Scale},
	} {
		raw := r.URL.Query().Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return errors.Validation(fmt.Sprintf("%s must be a positive integer, got %q", p.key, raw))
		}
		*p.dest = v
	}
	return nil
}
