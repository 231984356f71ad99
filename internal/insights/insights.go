// Package insights turns the computed aggregates into a business report with
// threshold-based recommendations, optionally persisted as JSON next to the
// exported charts.
package insights

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"sales-insights/internal/analytics"
	"sales-insights/internal/models"
)

const topProductCount = 5

type Report struct {
	ID              string                      `json:"id"`
	GeneratedAt     time.Time                   `json:"generated_at"`
	KPIs            models.KPISummary           `json:"kpis"`
	TopProducts     []models.ProductPerformance `json:"top_products"`
	Segments        []models.SegmentSummary     `json:"segments"`
	Retention       models.RetentionSummary     `json:"retention"`
	Recommendations []string                    `json:"recommendations"`
}

func Build(svc *analytics.Service) Report {
	kpis := svc.KPIs()
	retention := svc.Retention()

	return Report{
		ID:              uuid.New().String(),
		GeneratedAt:     time.Now().UTC(),
		KPIs:            kpis,
		TopProducts:     svc.TopProducts(topProductCount),
		Segments:        svc.Segments(),
		Retention:       retention,
		Recommendations: recommendations(kpis, retention),
	}
}

func recommendations(kpis models.KPISummary, retention models.RetentionSummary) []string {
	var recs []string

	if kpis.AvgOrderValue < 100 {
		recs = append(recs, "Consider implementing upselling strategies to increase average order value")
	}
	if retention.RepeatRate < 0.3 {
		recs = append(recs, "Focus on customer retention strategies - current repeat rate is low")
	}
	if kpis.TotalOrders > 0 {
		recs = append(recs, "Analyze top-performing products to understand success factors")
	}

	recs = append(recs,
		"Implement customer loyalty programs to improve retention",
		"Consider seasonal marketing campaigns based on sales trends",
		"Analyze customer segments for targeted marketing strategies",
	)
	return recs
}

func (r Report) WriteJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
