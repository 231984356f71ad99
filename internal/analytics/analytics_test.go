package analytics

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"sales-insights/internal/models"
)

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "test*.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func testRecords() []models.SalesRecord {
	return []models.SalesRecord{
		{
			OrderID:       "O001",
			OrderDate:     time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			CustomerID:    "C001",
			ProductID:     "P001",
			Category:      "Electronics",
			Region:        "North",
			PaymentMethod: "Credit Card",
			Quantity:      1,
			UnitPrice:     999.99,
			Revenue:       999.99,
		},
		{
			OrderID:       "O002",
			OrderDate:     time.Date(2023, 1, 16, 0, 0, 0, 0, time.UTC),
			CustomerID:    "C002",
			ProductID:     "P002",
			Category:      "Electronics",
			Region:        "South",
			PaymentMethod: "PayPal",
			Quantity:      2,
			UnitPrice:     29.99,
			Revenue:       59.98,
		},
		{
			OrderID:       "O003",
			OrderDate:     time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
			CustomerID:    "C001",
			ProductID:     "P003",
			Category:      "Books",
			Region:        "North",
			PaymentMethod: "Cash",
			Quantity:      1,
			UnitPrice:     79.99,
			Revenue:       79.99,
		},
	}
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestNewService(t *testing.T) {
	s := NewService()
	if s == nil {
		t.Fatal("NewService() returned nil")
	}
	if s.snap == nil {
		t.Error("snapshot should be initialized")
	}
	if s.logger == nil {
		t.Error("logger should be initialized")
	}
}

func TestService_SetRecords(t *testing.T) {
	s := NewService()
	s.SetRecords(testRecords())

	kpis := s.KPIs()

	// 999.99 + 59.98 + 79.99
	if !floatEq(kpis.TotalRevenue, 1139.96) {
		t.Errorf("TotalRevenue = %f, want 1139.96", kpis.TotalRevenue)
	}
	if kpis.TotalOrders != 3 {
		t.Errorf("TotalOrders = %d, want 3", kpis.TotalOrders)
	}
	if kpis.UniqueCustomers != 2 {
		t.Errorf("UniqueCustomers = %d, want 2", kpis.UniqueCustomers)
	}
	if kpis.UniqueProducts != 3 {
		t.Errorf("UniqueProducts = %d, want 3", kpis.UniqueProducts)
	}
	if !floatEq(kpis.AvgOrderValue, 1139.96/3) {
		t.Errorf("AvgOrderValue = %f, want %f", kpis.AvgOrderValue, 1139.96/3)
	}
	if !floatEq(kpis.OrdersPerCustomer, 1.5) {
		t.Errorf("OrdersPerCustomer = %f, want 1.5", kpis.OrdersPerCustomer)
	}
	if !kpis.FirstOrderDate.Equal(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("FirstOrderDate = %v", kpis.FirstOrderDate)
	}
	if !kpis.LastOrderDate.Equal(time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("LastOrderDate = %v", kpis.LastOrderDate)
	}
}

func TestService_LoadFile_ValidData(t *testing.T) {
	t.Chdir(t.TempDir())

	validCSV := `order_id,order_date,customer_id,product_id,category,region,payment_method,quantity,unit_price
O001,2023-01-15 10:00:00,C001,P001,Electronics,North,Credit Card,1,999.99
O002,2023-01-16 11:30:00,C002,P002,Electronics,South,PayPal,2,29.99`

	f := createTempCSV(t, validCSV)

	s := NewService()
	if err := s.LoadFile(context.Background(), f); err != nil {
		t.Fatalf("LoadFile() with valid data should not error, got: %v", err)
	}

	kpis := s.KPIs()
	if kpis.TotalOrders != 2 {
		t.Errorf("TotalOrders = %d, want 2", kpis.TotalOrders)
	}
	if !floatEq(kpis.TotalRevenue, 999.99+59.98) {
		t.Errorf("TotalRevenue = %f, want %f", kpis.TotalRevenue, 999.99+59.98)
	}
}

func TestService_LoadFile_UsesCache(t *testing.T) {
	t.Chdir(t.TempDir())

	validCSV := `order_id,order_date,customer_id,product_id,category,region,payment_method,quantity,unit_price
O001,2023-01-15 10:00:00,C001,P001,Electronics,North,Credit Card,1,100.00`

	f := createTempCSV(t, validCSV)

	s1 := NewService()
	if err := s1.LoadFile(context.Background(), f); err != nil {
		t.Fatal(err)
	}

	// Second service must produce identical aggregates from the cache.
	s2 := NewService()
	if err := s2.LoadFile(context.Background(), f); err != nil {
		t.Fatal(err)
	}

	if s1.KPIs() != s2.KPIs() {
		t.Errorf("cached KPIs differ: %+v vs %+v", s1.KPIs(), s2.KPIs())
	}
}

func TestService_LoadFile_InvalidData(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr bool
	}{
		{
			name:    "empty file",
			csv:     "",
			wantErr: true,
		},
		{
			name:    "header only",
			csv:     "order_id,order_date,customer_id,product_id,category,region,payment_method,quantity,unit_price",
			wantErr: true,
		},
		{
			name:    "all rows malformed",
			csv:     "order_id,order_date,customer_id,product_id,category,region,payment_method,quantity,unit_price\nO001,not-a-date,C001,P001,Electronics,North,Cash,1,10.00",
			wantErr: true,
		},
		{
			name:    "malformed rows dropped, valid rows kept",
			csv:     "order_id,order_date,customer_id,product_id,category,region,payment_method,quantity,unit_price\nO001,not-a-date,C001,P001,Electronics,North,Cash,1,10.00\nO002,2023-01-15 10:00:00,C002,P002,Books,South,PayPal,2,20.00",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			f := createTempCSV(t, tt.csv)

			s := NewService()
			err := s.LoadFile(context.Background(), f)

			if (err != nil) != tt.wantErr {
				t.Errorf("LoadFile() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_RevenueTrend(t *testing.T) {
	s := NewService()
	s.SetRecords(testRecords())

	daily := s.RevenueTrend("daily")
	if len(daily) != 3 {
		t.Fatalf("daily trend length = %d, want 3", len(daily))
	}
	if daily[0].Period != "2023-01-15" || daily[2].Period != "2023-02-10" {
		t.Errorf("daily trend should be chronological, got %q .. %q", daily[0].Period, daily[2].Period)
	}

	monthly := s.RevenueTrend("monthly")
	if len(monthly) != 2 {
		t.Fatalf("monthly trend length = %d, want 2", len(monthly))
	}
	if monthly[0].Period != "2023-01" {
		t.Errorf("first monthly period = %q, want 2023-01", monthly[0].Period)
	}
	if !floatEq(monthly[0].Revenue, 999.99+59.98) {
		t.Errorf("January revenue = %f, want %f", monthly[0].Revenue, 999.99+59.98)
	}
	if monthly[0].Orders != 2 {
		t.Errorf("January orders = %d, want 2", monthly[0].Orders)
	}

	// Unknown interval falls back to daily.
	fallback := s.RevenueTrend("hourly")
	if len(fallback) != len(daily) {
		t.Errorf("unknown interval should fall back to daily")
	}
}

func TestService_TopProducts(t *testing.T) {
	s := NewService()
	s.SetRecords(testRecords())

	result := s.TopProducts(10)
	if len(result) != 3 {
		t.Fatalf("TopProducts() length = %d, want 3", len(result))
	}

	// Should be sorted by total revenue descending
	for i := 1; i < len(result); i++ {
		if result[i-1].TotalRevenue < result[i].TotalRevenue {
			t.Error("TopProducts() should be sorted by total revenue descending")
		}
	}
	if result[0].ProductID != "P001" {
		t.Errorf("top product = %q, want P001", result[0].ProductID)
	}

	limited := s.TopProducts(2)
	if len(limited) != 2 {
		t.Errorf("TopProducts(2) length = %d, want 2", len(limited))
	}
}

func TestService_TopProducts_TieBreak(t *testing.T) {
	s := NewService()
	s.SetRecords([]models.SalesRecord{
		{OrderID: "O1", OrderDate: time.Now(), CustomerID: "C1", ProductID: "P2", Quantity: 1, UnitPrice: 50, Revenue: 50},
		{OrderID: "O2", OrderDate: time.Now(), CustomerID: "C1", ProductID: "P1", Quantity: 1, UnitPrice: 50, Revenue: 50},
	})

	result := s.TopProducts(10)
	if len(result) != 2 {
		t.Fatalf("length = %d, want 2", len(result))
	}
	if result[0].ProductID != "P1" {
		t.Errorf("equal revenue should tie-break on product ID, got %q first", result[0].ProductID)
	}
}

func TestService_RegionTotals(t *testing.T) {
	s := NewService()
	s.SetRecords(testRecords())

	result := s.RegionTotals()
	if len(result) != 2 {
		t.Fatalf("RegionTotals() length = %d, want 2", len(result))
	}

	if result[0].Region != "North" {
		t.Errorf("top region = %q, want North", result[0].Region)
	}
	if !floatEq(result[0].TotalRevenue, 999.99+79.99) {
		t.Errorf("North revenue = %f, want %f", result[0].TotalRevenue, 999.99+79.99)
	}
	if result[0].UniqueCustomers != 1 {
		t.Errorf("North unique customers = %d, want 1", result[0].UniqueCustomers)
	}
	if result[0].Orders != 2 {
		t.Errorf("North orders = %d, want 2", result[0].Orders)
	}
}

func TestService_ConcurrentAccess(t *testing.T) {
	s := NewService()
	s.SetRecords(testRecords())

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()

			_ = s.KPIs()
			_ = s.RevenueTrend("daily")
			_ = s.TopProducts(10)
			_ = s.RegionTotals()
			_ = s.Segments()
			_ = s.Cohorts()
			_ = s.Retention()
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestService_EmptyData(t *testing.T) {
	s := NewService()

	kpis := s.KPIs()
	if kpis.TotalRevenue != 0 || kpis.TotalOrders != 0 {
		t.Errorf("empty service should report zero KPIs, got %+v", kpis)
	}

	if len(s.RevenueTrend("daily")) != 0 {
		t.Error("RevenueTrend() should return empty slice")
	}
	if len(s.TopProducts(10)) != 0 {
		t.Error("TopProducts() should return empty slice")
	}
	if len(s.RegionTotals()) != 0 {
		t.Error("RegionTotals() should return empty slice")
	}
	if len(s.Segments()) != 0 {
		t.Error("Segments() should return empty slice")
	}
	if len(s.Cohorts()) != 0 {
		t.Error("Cohorts() should return empty slice")
	}
}

func TestService_Stats(t *testing.T) {
	s := NewService()
	s.SetRecords(testRecords())

	stats := s.Stats()
	if stats["record_count"] != int64(3) {
		t.Errorf("record_count = %v, want 3", stats["record_count"])
	}
	if stats["regions"] != 2 {
		t.Errorf("regions = %v, want 2", stats["regions"])
	}
}

func benchRecords(n int) []models.SalesRecord {
	records := make([]models.SalesRecord, n)
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		records[i] = models.SalesRecord{
			OrderID:    fmt.Sprintf("O%d", i),
			OrderDate:  base.Add(time.Duration(i) * time.Hour),
			CustomerID: fmt.Sprintf("C%d", i%100),
			ProductID:  fmt.Sprintf("P%d", i%50),
			Category:   "Electronics",
			Region:     "North",
			Quantity:   1 + i%5,
			UnitPrice:  float64(10 + i%490),
			Revenue:    float64((1 + i%5) * (10 + i%490)),
		}
	}
	return records
}

func BenchmarkService_SetRecords(b *testing.B) {
	records := benchRecords(1000)
	s := NewService()

	b.ResetTimer()
	for b.Loop() {
		s.SetRecords(records)
	}
}

func BenchmarkService_TopProducts(b *testing.B) {
	s := NewService()
	s.SetRecords(benchRecords(1000))

	b.ResetTimer()
	for b.Loop() {
		_ = s.TopProducts(10)
	}
}
