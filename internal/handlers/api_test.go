package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"sales-insights/internal/analytics"
	"sales-insights/internal/models"
)

func createTestAnalytics() *analytics.Service {
	svc := analytics.NewService()
	testData := []models.SalesRecord{
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
			OrderDate:     time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
			CustomerID:    "C002",
			ProductID:     "P002",
			Category:      "Books",
			Region:        "South",
			PaymentMethod: "PayPal",
			Quantity:      2,
			UnitPrice:     29.99,
			Revenue:       59.98,
		},
		{
			OrderID:       "O003",
			OrderDate:     time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC),
			CustomerID:    "C001",
			ProductID:     "P003",
			Category:      "Home",
			Region:        "North",
			PaymentMethod: "Cash",
			Quantity:      1,
			UnitPrice:     79.99,
			Revenue:       79.99,
		},
	}
	svc.SetRecords(testData)
	return svc
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewAPIHandlers(t *testing.T) {
	svc := createTestAnalytics()
	handlers := NewAPIHandlers(svc, testLogger())

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.analytics != svc {
		t.Error("NewAPIHandlers() should set analytics field")
	}
}

func decodeSuccess(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}
	return response
}

func TestAPIHandlers_HandleKPIs(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/kpis", nil)
	w := httptest.NewRecorder()

	handlers.HandleKPIs(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("expected cache-control 'public, max-age=300', got %q", cc)
	}

	response := decodeSuccess(t, w)
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected KPI object in response")
	}
	if orders, ok := data["total_orders"].(float64); !ok || orders != 3 {
		t.Errorf("total_orders = %v, want 3", data["total_orders"])
	}
}

func TestAPIHandlers_HandleRevenueTrend(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger())

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantPoints int
	}{
		{"default daily", "", http.StatusOK, 3},
		{"explicit daily", "?interval=daily", http.StatusOK, 3},
		{"monthly", "?interval=monthly", http.StatusOK, 3},
		{"invalid interval", "?interval=hourly", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/revenue-trend"+tt.query, nil)
			w := httptest.NewRecorder()

			handlers.HandleRevenueTrend(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			response := decodeSuccess(t, w)
			data, ok := response["data"].([]interface{})
			if !ok {
				t.Fatal("expected trend array in response")
			}
			if len(data) != tt.wantPoints {
				t.Errorf("trend points = %d, want %d", len(data), tt.wantPoints)
			}
		})
	}
}

func TestAPIHandlers_HandleTopProducts(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger())

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLen    int
	}{
		{"default limit", "", http.StatusOK, 3},
		{"explicit limit", "?n=2", http.StatusOK, 2},
		{"limit above product count", "?n=50", http.StatusOK, 3},
		{"invalid limit", "?n=abc", http.StatusBadRequest, 0},
		{"zero limit", "?n=0", http.StatusBadRequest, 0},
		{"limit too large", "?n=500", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/top-products"+tt.query, nil)
			w := httptest.NewRecorder()

			handlers.HandleTopProducts(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			response := decodeSuccess(t, w)
			data, ok := response["data"].([]interface{})
			if !ok {
				t.Fatal("expected products array in response")
			}
			if len(data) != tt.wantLen {
				t.Errorf("products = %d, want %d", len(data), tt.wantLen)
			}
		})
	}
}

func TestAPIHandlers_AggregateEndpoints(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger())

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"regions", handlers.HandleRegions},
		{"segments", handlers.HandleSegments},
		{"cohorts", handlers.HandleCohorts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			tt.handler(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
				t.Errorf("expected cache-control 'public, max-age=300', got %q", cc)
			}

			response := decodeSuccess(t, w)
			if _, ok := response["data"]; !ok {
				t.Error("expected data field in response")
			}
		})
	}
}

func TestAPIHandlers_HandleRetention(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/retention", nil)
	w := httptest.NewRecorder()

	handlers.HandleRetention(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	response := decodeSuccess(t, w)
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected retention object in response")
	}
	// C001 ordered twice, C002 once.
	if total, ok := data["total_customers"].(float64); !ok || total != 2 {
		t.Errorf("total_customers = %v, want 2", data["total_customers"])
	}
	if repeat, ok := data["repeat_customers"].(float64); !ok || repeat != 1 {
		t.Errorf("repeat_customers = %v, want 1", data["repeat_customers"])
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	// Health endpoint should NOT have cache-control header
	if cc := w.Header().Get("Cache-Control"); cc != "" {
		t.Errorf("health endpoint should not set cache-control, got %q", cc)
	}

	response := decodeSuccess(t, w)
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected health data in response")
	}
	if status, ok := data["status"].(string); !ok || status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", status)
	}
	if timestamp, ok := data["timestamp"].(string); !ok || timestamp == "" {
		t.Error("expected non-empty timestamp")
	} else if _, err := time.Parse(time.RFC3339, timestamp); err != nil {
		t.Errorf("invalid timestamp format: %v", err)
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()

	handlers.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	response := decodeSuccess(t, w)
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected stats object in response")
	}
	if count, ok := data["record_count"].(float64); !ok || count != 3 {
		t.Errorf("record_count = %v, want 3", data["record_count"])
	}
}
