package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"sales-insights/internal/analytics"
	"sales-insights/internal/models"
)

const (
	maxSSEProducts = 20
	maxSSECohorts  = 24
)

var kpiPanelTemplate = template.Must(template.New("kpiPanel").Parse(`
<div id="kpi-content">
<div class="kpi-grid">
<div class="kpi-card"><span class="kpi-label">Total Revenue</span><strong>${{printf "%.2f" .TotalRevenue}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Avg Order Value</span><strong>${{printf "%.2f" .AvgOrderValue}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Orders</span><strong>{{.TotalOrders}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Customers</span><strong>{{.UniqueCustomers}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Products</span><strong>{{.UniqueProducts}}</strong></div>
</div>
</div>`))

type SSEHandlers struct {
	analytics *analytics.Service
	logger    *slog.Logger
}

func NewSSEHandlers(svc *analytics.Service, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: svc,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderKPIPanel(kpis models.KPISummary) (string, error) {
	var buf strings.Builder
	err := kpiPanelTemplate.Execute(&buf, kpis)
	return buf.String(), err
}

func (h *SSEHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	kpis := h.analytics.KPIs()
	html, err := h.renderKPIPanel(kpis)
	if err != nil {
		h.logger.Error("render kpi panel", "error", err)
		return
	}
	sse.PatchElements(html)

	jsonData, err := json.Marshal(map[string]any{
		"kpiData": kpis,
	})
	if err != nil {
		h.logger.Error("marshal kpi data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	kpis := h.analytics.KPIs()
	html, err := h.renderKPIPanel(kpis)
	if err != nil {
		h.logger.Error("render kpi panel", "error", err)
		return
	}
	sse.PatchElements(html)

	trendData := h.analytics.RevenueTrend("daily")
	productsData := h.analytics.TopProducts(maxSSEProducts)
	regionsData := h.analytics.RegionTotals()
	segmentsData := h.analytics.Segments()

	cohortsData := h.analytics.Cohorts()
	if len(cohortsData) > maxSSECohorts {
		cohortsData = cohortsData[:maxSSECohorts]
	}

	// Send all signals in one call
	allSignals, err := json.Marshal(map[string]any{
		"kpiData":      kpis,
		"trendData":    trendData,
		"productsData": productsData,
		"regionsData":  regionsData,
		"segmentsData": segmentsData,
		"cohortsData":  cohortsData,
	})
	if err != nil {
		h.logger.Error("marshal all signals data", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
