// Package templates renders the dashboard page. The page bootstraps itself
// through the datastar SSE endpoints, so the markup here is only the shell.
package templates

import (
	"context"
	"html/template"
	"io"
)

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Sales Insights Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f8fafc; color: #0f172a; }
header { background: #4F46E5; color: #fff; padding: 1rem 2rem; }
main { padding: 2rem; display: grid; gap: 2rem; }
section { background: #fff; border-radius: 8px; padding: 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.kpi-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 1rem; }
.kpi-card { background: #f1f5f9; border-radius: 6px; padding: 1rem; display: flex; flex-direction: column; gap: .25rem; }
.kpi-label { color: #64748b; font-size: .85rem; }
.chart-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(480px, 1fr)); gap: 1rem; }
.chart-grid img { width: 100%; height: auto; border: 1px solid #e2e8f0; border-radius: 6px; }
button { background: #4F46E5; color: #fff; border: 0; border-radius: 6px; padding: .5rem 1rem; cursor: pointer; }
</style>
</head>
<body>
<header>
<h1>Sales Insights</h1>
</header>
<main data-on-load="@get('/sse/kpis')">
<section>
<div style="display:flex;justify-content:space-between;align-items:center">
<h2>Key Metrics</h2>
<button data-on-click="@get('/sse/refresh-all')">Refresh</button>
</div>
<div id="kpi-content">Loading metrics…</div>
</section>
<section>
<h2>Charts</h2>
<div class="chart-grid">
<img src="/charts/sales_trends.png" alt="Sales trends">
<img src="/charts/product_performance.png" alt="Product performance">
<img src="/charts/geographic_performance.png" alt="Geographic performance">
<img src="/charts/customer_segmentation.png" alt="Customer segmentation">
<img src="/charts/cohort_heatmap.png" alt="Cohort retention">
<img src="/charts/revenue_distribution.png" alt="Revenue distribution">
</div>
</section>
</main>
</body>
</html>`))

type page struct{}

// Dashboard returns the dashboard page renderer.
func Dashboard() page {
	return page{}
}

func (page) Render(ctx context.Context, w io.Writer) error {
	return dashboardTemplate.Execute(w, nil)
}
