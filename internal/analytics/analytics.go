package analytics

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sales-insights/internal/dataset"
	"sales-insights/internal/models"
)

const (
	cacheVersion = "v1"
	cacheDir     = ".cache"

	dailyPeriod   = "2006-01-02"
	monthlyPeriod = "2006-01"
)

// Snapshot holds every aggregate view derived from one record set. It is
// immutable once computed; a reload swaps the whole snapshot.
type Snapshot struct {
	KPIs         models.KPISummary           `json:"kpis"`
	DailyTrend   []models.TrendPoint         `json:"daily_trend"`
	MonthlyTrend []models.TrendPoint         `json:"monthly_trend"`
	Products     []models.ProductPerformance `json:"products"`
	Regions      []models.RegionPerformance  `json:"regions"`
	Segments     []models.SegmentSummary     `json:"segments"`
	Cohorts      []models.CohortRow          `json:"cohorts"`
	Retention    models.RetentionSummary     `json:"retention"`
	LastModified time.Time                   `json:"last_modified"`
	RecordCount  int64                       `json:"record_count"`
}

// Service computes and serves sales aggregates. Every aggregate is a pure
// function of the loaded record set; there is no incremental update path.
type Service struct {
	mu               sync.RWMutex
	snap             *Snapshot
	sourcePath       string
	recordsProcessed atomic.Int64
	logger           *slog.Logger
}

func NewService() *Service {
	return &Service{
		snap:   &Snapshot{},
		logger: slog.Default(),
	}
}

// SetRecords replaces the current snapshot with aggregates computed from the
// given records.
func (s *Service) SetRecords(records []models.SalesRecord) {
	snap := compute(records)

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.recordsProcessed.Store(snap.RecordCount)
}

// LoadFile loads a dataset file, using a gob snapshot cache when it is newer
// than the source file.
func (s *Service) LoadFile(ctx context.Context, path string) error {
	s.mu.Lock()
	s.sourcePath = path
	s.mu.Unlock()

	if cached, err := s.loadFromCache(path); err == nil {
		if info, err := os.Stat(path); err == nil && info.ModTime().Before(cached.LastModified) {
			s.mu.Lock()
			s.snap = cached
			s.mu.Unlock()
			s.recordsProcessed.Store(cached.RecordCount)
			s.logger.Info("loaded snapshot from cache", "records", cached.RecordCount)
			return nil
		}
	}

	start := time.Now()
	records, err := dataset.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	s.SetRecords(records)

	if err := s.saveToCache(path); err != nil {
		s.logger.Warn("failed to save snapshot cache", "error", err)
	}

	duration := time.Since(start)
	s.logger.Info("dataset processed",
		"records", len(records),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(records))/duration.Seconds()))

	return nil
}

func compute(records []models.SalesRecord) *Snapshot {
	return &Snapshot{
		KPIs:         computeKPIs(records),
		DailyTrend:   computeTrend(records, dailyPeriod),
		MonthlyTrend: computeTrend(records, monthlyPeriod),
		Products:     computeProducts(records),
		Regions:      computeRegions(records),
		Segments:     computeSegments(records),
		Cohorts:      computeCohorts(records),
		Retention:    computeRetention(records),
		LastModified: time.Now(),
		RecordCount:  int64(len(records)),
	}
}

func computeKPIs(records []models.SalesRecord) models.KPISummary {
	var kpis models.KPISummary
	if len(records) == 0 {
		return kpis
	}

	customers := make(map[string]struct{})
	products := make(map[string]struct{})
	first, last := records[0].OrderDate, records[0].OrderDate

	for _, r := range records {
		kpis.TotalRevenue += r.Revenue
		customers[r.CustomerID] = struct{}{}
		products[r.ProductID] = struct{}{}
		if r.OrderDate.Before(first) {
			first = r.OrderDate
		}
		if r.OrderDate.After(last) {
			last = r.OrderDate
		}
	}

	kpis.TotalOrders = len(records)
	kpis.UniqueCustomers = len(customers)
	kpis.UniqueProducts = len(products)
	kpis.AvgOrderValue = kpis.TotalRevenue / float64(kpis.TotalOrders)
	kpis.RevenuePerCustomer = kpis.TotalRevenue / float64(kpis.UniqueCustomers)
	kpis.RevenuePerProduct = kpis.TotalRevenue / float64(kpis.UniqueProducts)
	kpis.OrdersPerCustomer = float64(kpis.TotalOrders) / float64(kpis.UniqueCustomers)
	kpis.FirstOrderDate = first
	kpis.LastOrderDate = last
	return kpis
}

func computeTrend(records []models.SalesRecord, layout string) []models.TrendPoint {
	buckets := make(map[string]*models.TrendPoint)
	for _, r := range records {
		period := r.OrderDate.Format(layout)
		b := buckets[period]
		if b == nil {
			b = &models.TrendPoint{Period: period}
			buckets[period] = b
		}
		b.Revenue += r.Revenue
		b.Orders++
		b.Quantity += r.Quantity
	}

	result := make([]models.TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		if b.Orders > 0 {
			b.AvgOrderValue = b.Revenue / float64(b.Orders)
		}
		result = append(result, *b)
	}
	// Period strings are zero-padded, so lexical order is chronological.
	slices.SortFunc(result, func(a, b models.TrendPoint) int {
		return strings.Compare(a.Period, b.Period)
	})
	return result
}

func computeProducts(records []models.SalesRecord) []models.ProductPerformance {
	groups := make(map[string]*models.ProductPerformance)
	for _, r := range records {
		p := groups[r.ProductID]
		if p == nil {
			p = &models.ProductPerformance{ProductID: r.ProductID, Category: r.Category}
			groups[r.ProductID] = p
		}
		p.TotalRevenue += r.Revenue
		p.Orders++
		p.Quantity += r.Quantity
	}

	result := make([]models.ProductPerformance, 0, len(groups))
	for _, p := range groups {
		p.AvgOrderValue = p.TotalRevenue / float64(p.Orders)
		result = append(result, *p)
	}
	// Tie-break on product ID keeps the ranking stable across runs.
	slices.SortFunc(result, func(a, b models.ProductPerformance) int {
		if a.TotalRevenue != b.TotalRevenue {
			if a.TotalRevenue > b.TotalRevenue {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ProductID, b.ProductID)
	})
	return result
}

func computeRegions(records []models.SalesRecord) []models.RegionPerformance {
	type regionAccum struct {
		perf      models.RegionPerformance
		customers map[string]struct{}
	}

	groups := make(map[string]*regionAccum)
	for _, r := range records {
		g := groups[r.Region]
		if g == nil {
			g = &regionAccum{
				perf:      models.RegionPerformance{Region: r.Region},
				customers: make(map[string]struct{}),
			}
			groups[r.Region] = g
		}
		g.perf.TotalRevenue += r.Revenue
		g.perf.Orders++
		g.customers[r.CustomerID] = struct{}{}
	}

	result := make([]models.RegionPerformance, 0, len(groups))
	for _, g := range groups {
		g.perf.UniqueCustomers = len(g.customers)
		g.perf.AvgOrderValue = g.perf.TotalRevenue / float64(g.perf.Orders)
		result = append(result, g.perf)
	}
	slices.SortFunc(result, func(a, b models.RegionPerformance) int {
		if a.TotalRevenue != b.TotalRevenue {
			if a.TotalRevenue > b.TotalRevenue {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Region, b.Region)
	})
	return result
}

// Read accessors. Each returns data from the current snapshot; callers must
// not mutate the returned slices.

func (s *Service) KPIs() models.KPISummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.KPIs
}

// RevenueTrend returns the revenue-over-time series. Interval is "daily" or
// "monthly"; anything else falls back to daily.
func (s *Service) RevenueTrend(interval string) []models.TrendPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if interval == "monthly" {
		return s.snap.MonthlyTrend
	}
	return s.snap.DailyTrend
}

func (s *Service) TopProducts(limit int) []models.ProductPerformance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snap.Products) <= limit {
		return s.snap.Products
	}
	return s.snap.Products[:limit]
}

func (s *Service) RegionTotals() []models.RegionPerformance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Regions
}

func (s *Service) Segments() []models.SegmentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Segments
}

func (s *Service) Cohorts() []models.CohortRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Cohorts
}

func (s *Service) Retention() models.RetentionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Retention
}

func (s *Service) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"record_count":   s.snap.RecordCount,
		"last_processed": s.snap.LastModified,
		"daily_buckets":  len(s.snap.DailyTrend),
		"products":       len(s.snap.Products),
		"regions":        len(s.snap.Regions),
		"segments":       len(s.snap.Segments),
		"cohorts":        len(s.snap.Cohorts),
	}
}

// Cache management

func (s *Service) getCacheFilename(path string) string {
	return fmt.Sprintf("%s/%s_%s.gob", cacheDir, strings.ReplaceAll(path, "/", "_"), cacheVersion)
}

func (s *Service) saveToCache(path string) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(s.getCacheFilename(path))
	if err != nil {
		return err
	}
	defer file.Close()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return gob.NewEncoder(file).Encode(s.snap)
}

func (s *Service) loadFromCache(path string) (*Snapshot, error) {
	file, err := os.Open(s.getCacheFilename(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap Snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
