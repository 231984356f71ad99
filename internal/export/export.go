// Package export writes the standard chart set and the insights report to
// disk, rendering charts in parallel.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-insights/internal/analytics"
	"sales-insights/internal/charts"
	"sales-insights/internal/config"
	"sales-insights/internal/insights"
)

const (
	topProductCount = 10
	maxConcurrent   = 4
)

// Exporter renders chart files from the current analytics snapshot.
type Exporter struct {
	analytics *analytics.Service
	renderer  *charts.Renderer
	cfg       config.ExportConfig
	logger    *slog.Logger
}

func New(svc *analytics.Service, cfg config.ExportConfig, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		analytics: svc,
		renderer:  charts.NewRenderer(),
		cfg:       cfg,
		logger:    logger,
	}
}

type chartJob struct {
	filename string
	spec     charts.Spec
	opts     charts.Options
}

// Quick writes the four headline charts and returns the created file paths.
func (e *Exporter) Quick(ctx context.Context, outDir string) ([]string, error) {
	return e.run(ctx, outDir, e.quickJobs(), false)
}

// Full writes the complete chart set plus insights.json.
func (e *Exporter) Full(ctx context.Context, outDir string) ([]string, error) {
	jobs := e.quickJobs()
	jobs = append(jobs,
		chartJob{
			filename: "customer_segmentation.png",
			spec:     charts.SegmentsSpec(e.analytics.Segments()),
			opts:     e.defaultOptions(),
		},
		chartJob{
			filename: "customer_retention.png",
			spec:     charts.RetentionSpec(e.analytics.Retention()),
			opts:     e.defaultOptions(),
		},
		chartJob{
			filename: "cohort_heatmap.png",
			spec:     charts.CohortHeatmapSpec(e.analytics.Cohorts()),
			opts:     e.defaultOptions(),
		},
		chartJob{
			filename: "revenue_distribution.png",
			spec:     charts.RevenueDistributionSpec(e.analytics.RevenueTrend("monthly")),
			opts:     e.defaultOptions(),
		},
		chartJob{
			filename: "summary_dashboard.png",
			spec: charts.SummarySpec(
				e.analytics.KPIs(),
				e.analytics.RevenueTrend("monthly"),
				e.analytics.TopProducts(topProductCount),
				e.analytics.Segments(),
				e.analytics.RegionTotals(),
			),
			opts: charts.Options{
				Width:  e.cfg.SummaryWidth,
				Height: e.cfg.SummaryHeight,
				Scale:  e.cfg.Scale,
			},
		},
	)
	return e.run(ctx, outDir, jobs, true)
}

func (e *Exporter) quickJobs() []chartJob {
	opts := e.defaultOptions()
	return []chartJob{
		{
			filename: "sales_trends.png",
			spec:     charts.SalesTrendSpec(e.analytics.RevenueTrend("daily")),
			opts:     opts,
		},
		{
			filename: "product_performance.png",
			spec:     charts.TopProductsSpec(e.analytics.TopProducts(topProductCount)),
			opts:     opts,
		},
		{
			filename: "kpi_dashboard.png",
			spec:     charts.KPIDashboardSpec(e.analytics.KPIs()),
			opts:     opts,
		},
		{
			filename: "geographic_performance.png",
			spec:     charts.RegionHeatmapSpec(e.analytics.RegionTotals()),
			opts:     opts,
		},
	}
}

func (e *Exporter) defaultOptions() charts.Options {
	return charts.Options{
		Width:  e.cfg.Width,
		Height: e.cfg.Height,
		Scale:  e.cfg.Scale,
	}
}

func (e *Exporter) run(ctx context.Context, outDir string, jobs []chartJob, withReport bool) ([]string, error) {
	if outDir == "" {
		outDir = e.cfg.Dir
	}

	start := time.Now()
	var (
		mu    sync.Mutex
		files []string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(outDir, job.filename)
			if err := e.renderer.RenderFile(job.spec, job.opts, path); err != nil {
				return fmt.Errorf("render %s: %w", job.filename, err)
			}

			mu.Lock()
			files = append(files, path)
			mu.Unlock()

			e.logger.Debug("chart exported", "file", path)
			return nil
		})
	}

	if withReport {
		g.Go(func() error {
			path := filepath.Join(outDir, "insights.json")
			if err := insights.Build(e.analytics).WriteJSON(path); err != nil {
				return fmt.Errorf("write insights report: %w", err)
			}

			mu.Lock()
			files = append(files, path)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(files)
	e.logger.Info("export complete",
		"files", len(files),
		"dir", outDir,
		"duration", time.Since(start))
	return files, nil
}
