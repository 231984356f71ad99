package charts

import (
	"fmt"

	"sales-insights/internal/models"
)

type Kind string

const (
	KindLine    Kind = "line"
	KindBar     Kind = "bar"
	KindHeatmap Kind = "heatmap"
	KindGrid    Kind = "grid"
)

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Point is a single labeled data point.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is one named data series.
type Series struct {
	Name   string  `json:"name"`
	Color  string  `json:"color,omitempty"`
	Points []Point `json:"data"`
}

// Heatmap holds a dense value grid; Values is indexed [row][col] matching
// YLabels and XLabels.
type Heatmap struct {
	XLabels []string    `json:"x_labels"`
	YLabels []string    `json:"y_labels"`
	Values  [][]float64 `json:"values"`
}

// Spec is an in-memory chart description consumed by the renderer. A grid
// spec composes sub-charts into one image; all other kinds are leaf charts.
type Spec struct {
	Kind   Kind     `json:"kind"`
	Title  string   `json:"title"`
	XLabel string   `json:"x_label,omitempty"`
	YLabel string   `json:"y_label,omitempty"`
	Series []Series `json:"series,omitempty"`
	Heat   *Heatmap `json:"heat,omitempty"`
	Panels []Spec   `json:"panels,omitempty"`
}

func assignColors(series []Series) {
	for i := range series {
		if series[i].Color == "" {
			series[i].Color = defaultColors[i%len(defaultColors)]
		}
	}
}

// SalesTrendSpec charts revenue and order count over time, one panel each.
func SalesTrendSpec(trend []models.TrendPoint) Spec {
	revenue := Series{Name: "Revenue", Points: make([]Point, 0, len(trend))}
	orders := Series{Name: "Orders", Points: make([]Point, 0, len(trend))}
	for _, t := range trend {
		revenue.Points = append(revenue.Points, Point{Label: t.Period, Value: t.Revenue})
		orders.Points = append(orders.Points, Point{Label: t.Period, Value: float64(t.Orders)})
	}

	return Spec{
		Kind:  KindGrid,
		Title: "Sales Trends Over Time",
		Panels: []Spec{
			{Kind: KindLine, Title: "Revenue", XLabel: "Period", YLabel: "Revenue", Series: withColors(revenue)},
			{Kind: KindLine, Title: "Order Count", XLabel: "Period", YLabel: "Orders", Series: withColors(orders)},
		},
	}
}

// TopProductsSpec charts the top products by total revenue.
func TopProductsSpec(products []models.ProductPerformance) Spec {
	s := Series{Name: "Revenue", Points: make([]Point, 0, len(products))}
	for _, p := range products {
		s.Points = append(s.Points, Point{Label: p.ProductID, Value: p.TotalRevenue})
	}

	return Spec{
		Kind:   KindBar,
		Title:  fmt.Sprintf("Top %d Products by Revenue", len(products)),
		XLabel: "Product",
		YLabel: "Revenue",
		Series: withColors(s),
	}
}

// RegionHeatmapSpec builds the geographic performance heatmap: one row per
// region, columns for revenue, orders, and unique customers.
func RegionHeatmapSpec(regions []models.RegionPerformance) Spec {
	heat := &Heatmap{
		XLabels: []string{"Revenue", "Orders", "Customers"},
		YLabels: make([]string, 0, len(regions)),
		Values:  make([][]float64, 0, len(regions)),
	}
	for _, r := range regions {
		heat.YLabels = append(heat.YLabels, r.Region)
		heat.Values = append(heat.Values, []float64{r.TotalRevenue, float64(r.Orders), float64(r.UniqueCustomers)})
	}

	return Spec{
		Kind:   KindHeatmap,
		Title:  "Geographic Performance Heatmap",
		XLabel: "Metric",
		YLabel: "Region",
		Heat:   heat,
	}
}

// KPIDashboardSpec renders the headline metrics as a panel grid.
func KPIDashboardSpec(kpis models.KPISummary) Spec {
	panel := func(title, label string, value float64) Spec {
		return Spec{
			Kind:   KindBar,
			Title:  title,
			Series: withColors(Series{Name: label, Points: []Point{{Label: label, Value: value}}}),
		}
	}

	return Spec{
		Kind:  KindGrid,
		Title: "Key Performance Indicators",
		Panels: []Spec{
			panel(fmt.Sprintf("Total Revenue: %.2f", kpis.TotalRevenue), "Total Revenue", kpis.TotalRevenue),
			panel(fmt.Sprintf("Avg Order Value: %.2f", kpis.AvgOrderValue), "Avg Order Value", kpis.AvgOrderValue),
			panel(fmt.Sprintf("Unique Customers: %d", kpis.UniqueCustomers), "Unique Customers", float64(kpis.UniqueCustomers)),
			panel(fmt.Sprintf("Total Orders: %d", kpis.TotalOrders), "Total Orders", float64(kpis.TotalOrders)),
		},
	}
}

// SegmentsSpec charts the customer segmentation results.
func SegmentsSpec(segments []models.SegmentSummary) Spec {
	counts := Series{Name: "Customers", Points: make([]Point, 0, len(segments))}
	spend := Series{Name: "Avg Spend", Points: make([]Point, 0, len(segments))}
	orders := Series{Name: "Avg Orders", Points: make([]Point, 0, len(segments))}
	for _, s := range segments {
		counts.Points = append(counts.Points, Point{Label: s.Segment, Value: float64(s.Customers)})
		spend.Points = append(spend.Points, Point{Label: s.Segment, Value: s.AvgSpend})
		orders.Points = append(orders.Points, Point{Label: s.Segment, Value: s.AvgOrders})
	}

	return Spec{
		Kind:  KindGrid,
		Title: "Customer Segmentation Analysis",
		Panels: []Spec{
			{Kind: KindBar, Title: "Customers by Segment", YLabel: "Customers", Series: withColors(counts)},
			{Kind: KindBar, Title: "Avg Spend by Segment", YLabel: "Spend", Series: withColors(spend)},
			{Kind: KindBar, Title: "Avg Orders by Segment", YLabel: "Orders", Series: withColors(orders)},
		},
	}
}

// RetentionSpec charts dataset-wide retention counts.
func RetentionSpec(ret models.RetentionSummary) Spec {
	s := Series{Name: "Customers", Points: []Point{
		{Label: "Total", Value: float64(ret.TotalCustomers)},
		{Label: "Repeat", Value: float64(ret.RepeatCustomers)},
		{Label: "One-off", Value: float64(ret.TotalCustomers - ret.RepeatCustomers)},
	}}

	return Spec{
		Kind:   KindBar,
		Title:  fmt.Sprintf("Customer Retention (repeat rate %.0f%%)", ret.RepeatRate*100),
		YLabel: "Customers",
		Series: withColors(s),
	}
}

// CohortHeatmapSpec builds the retention-cohort matrix as percentages of the
// cohort still active k months after first purchase.
func CohortHeatmapSpec(cohorts []models.CohortRow) Spec {
	heat := &Heatmap{
		YLabels: make([]string, 0, len(cohorts)),
		Values:  make([][]float64, 0, len(cohorts)),
	}

	width := 0
	for _, c := range cohorts {
		if len(c.Active) > width {
			width = len(c.Active)
		}
	}
	for i := 0; i < width; i++ {
		heat.XLabels = append(heat.XLabels, fmt.Sprintf("M%d", i))
	}

	for _, c := range cohorts {
		heat.YLabels = append(heat.YLabels, c.Cohort)
		row := make([]float64, width)
		for i, active := range c.Active {
			if c.Size > 0 {
				row[i] = float64(active) / float64(c.Size) * 100
			}
		}
		heat.Values = append(heat.Values, row)
	}

	return Spec{
		Kind:   KindHeatmap,
		Title:  "Retention Cohorts (% of cohort active)",
		XLabel: "Months Since First Purchase",
		YLabel: "Cohort",
		Heat:   heat,
	}
}

// RevenueDistributionSpec charts revenue per month as a bar series.
func RevenueDistributionSpec(monthly []models.TrendPoint) Spec {
	s := Series{Name: "Revenue", Points: make([]Point, 0, len(monthly))}
	for _, t := range monthly {
		s.Points = append(s.Points, Point{Label: t.Period, Value: t.Revenue})
	}

	return Spec{
		Kind:   KindBar,
		Title:  "Revenue Distribution by Month",
		XLabel: "Month",
		YLabel: "Revenue",
		Series: withColors(s),
	}
}

// SummarySpec composes the headline views into one dashboard image.
func SummarySpec(kpis models.KPISummary, monthly []models.TrendPoint, products []models.ProductPerformance, segments []models.SegmentSummary, regions []models.RegionPerformance) Spec {
	revenue := Series{Name: "Revenue", Points: make([]Point, 0, len(monthly))}
	for _, t := range monthly {
		revenue.Points = append(revenue.Points, Point{Label: t.Period, Value: t.Revenue})
	}

	topProducts := Series{Name: "Revenue", Points: make([]Point, 0, len(products))}
	for _, p := range products {
		topProducts.Points = append(topProducts.Points, Point{Label: p.ProductID, Value: p.TotalRevenue})
	}

	segmentCounts := Series{Name: "Customers", Points: make([]Point, 0, len(segments))}
	for _, s := range segments {
		segmentCounts.Points = append(segmentCounts.Points, Point{Label: s.Segment, Value: float64(s.Customers)})
	}

	regionRevenue := Series{Name: "Revenue", Points: make([]Point, 0, len(regions))}
	for _, r := range regions {
		regionRevenue.Points = append(regionRevenue.Points, Point{Label: r.Region, Value: r.TotalRevenue})
	}

	kpiBars := Series{Name: "Value", Points: []Point{
		{Label: "Revenue", Value: kpis.TotalRevenue},
		{Label: "AOV", Value: kpis.AvgOrderValue},
		{Label: "Customers", Value: float64(kpis.UniqueCustomers)},
		{Label: "Orders", Value: float64(kpis.TotalOrders)},
	}}

	return Spec{
		Kind:  KindGrid,
		Title: "Sales Analysis Summary Dashboard",
		Panels: []Spec{
			{Kind: KindBar, Title: "Key Metrics", Series: withColors(kpiBars)},
			{Kind: KindLine, Title: "Monthly Revenue", XLabel: "Month", YLabel: "Revenue", Series: withColors(revenue)},
			{Kind: KindBar, Title: "Top Products", XLabel: "Product", YLabel: "Revenue", Series: withColors(topProducts)},
			{Kind: KindBar, Title: "Customer Segments", YLabel: "Customers", Series: withColors(segmentCounts)},
			{Kind: KindBar, Title: "Revenue by Region", XLabel: "Region", YLabel: "Revenue", Series: withColors(regionRevenue)},
		},
	}
}

func withColors(series ...Series) []Series {
	assignColors(series)
	return series
}
