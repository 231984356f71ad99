// Command export renders the standard chart set and insights report without
// starting the web server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"sales-insights/internal/analytics"
	"sales-insights/internal/config"
	"sales-insights/internal/dataset"
	"sales-insights/internal/export"
	"sales-insights/internal/observability"
)

const exportTimeout = 5 * time.Minute

func main() {
	var (
		quick = flag.Bool("quick", false, "export only the headline charts")
		full  = flag.Bool("full", false, "export the complete chart set plus insights.json")
		out   = flag.String("out", "", "output directory (default from EXPORT_DIR)")
		data  = flag.String("data", "", "dataset file (default from DATA_FILE)")
		scale = flag.Int("scale", 0, "pixel scale factor override")
		rows  = flag.Int("rows", 0, "sample row count when generating data")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	if *data != "" {
		cfg.Data.File = *data
	}
	if *scale > 0 {
		cfg.Export.Scale = *scale
	}
	if *rows > 0 {
		cfg.Data.SampleRows = *rows
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	svc := analytics.NewService()
	if _, err := os.Stat(cfg.Data.File); err == nil {
		if err := svc.LoadFile(ctx, cfg.Data.File); err != nil {
			logger.Error("failed to load dataset", "error", err, "file", cfg.Data.File)
			os.Exit(1)
		}
	} else {
		logger.Info("dataset not found, generating sample data",
			"rows", cfg.Data.SampleRows,
			"seed", cfg.Data.SampleSeed,
		)
		svc.SetRecords(dataset.Sample(cfg.Data.SampleRows, cfg.Data.SampleSeed))
	}

	exporter := export.New(svc, cfg.Export, logger)

	var files []string
	switch {
	case *full:
		files, err = exporter.Full(ctx, *out)
	case *quick:
		files, err = exporter.Quick(ctx, *out)
	default:
		files, err = exporter.Quick(ctx, *out)
	}
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	for _, f := range files {
		logger.Info("exported", "file", f)
	}
}
