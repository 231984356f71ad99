package models

import "time"

// KPISummary holds the named headline metrics, recomputed on demand from the
// full record set. An empty dataset yields a zero value, never NaN.
type KPISummary struct {
	TotalRevenue       float64   `json:"total_revenue"`
	AvgOrderValue      float64   `json:"avg_order_value"`
	TotalOrders        int       `json:"total_orders"`
	UniqueCustomers    int       `json:"unique_customers"`
	UniqueProducts     int       `json:"unique_products"`
	RevenuePerCustomer float64   `json:"revenue_per_customer"`
	RevenuePerProduct  float64   `json:"revenue_per_product"`
	OrdersPerCustomer  float64   `json:"orders_per_customer"`
	FirstOrderDate     time.Time `json:"first_order_date"`
	LastOrderDate      time.Time `json:"last_order_date"`
}

// TrendPoint is one bucket of the revenue-over-time series.
type TrendPoint struct {
	Period        string  `json:"period"`
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	Quantity      int     `json:"quantity"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// ProductPerformance aggregates one product across all its orders.
type ProductPerformance struct {
	ProductID     string  `json:"product_id"`
	Category      string  `json:"category"`
	TotalRevenue  float64 `json:"total_revenue"`
	Orders        int     `json:"orders"`
	Quantity      int     `json:"quantity"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// RegionPerformance aggregates one region across all its orders.
type RegionPerformance struct {
	Region          string  `json:"region"`
	TotalRevenue    float64 `json:"total_revenue"`
	Orders          int     `json:"orders"`
	UniqueCustomers int     `json:"unique_customers"`
	AvgOrderValue   float64 `json:"avg_order_value"`
}

// SegmentSummary describes one RFM customer segment.
type SegmentSummary struct {
	Segment        string  `json:"segment"`
	Customers      int     `json:"customers"`
	AvgOrders      float64 `json:"avg_orders"`
	AvgSpend       float64 `json:"avg_spend"`
	AvgRecencyDays float64 `json:"avg_recency_days"`
}

// CohortRow is one first-purchase-month cohort. Active[k] counts distinct
// customers from the cohort who purchased k months after their first order,
// so Active[0] equals Size. All rows are padded to the same length.
type CohortRow struct {
	Cohort string `json:"cohort"`
	Size   int    `json:"size"`
	Active []int  `json:"active"`
}

// RetentionSummary holds dataset-wide repeat-purchase metrics.
type RetentionSummary struct {
	TotalCustomers  int     `json:"total_customers"`
	RepeatCustomers int     `json:"repeat_customers"`
	RepeatRate      float64 `json:"repeat_rate"`
	AvgLifespanDays float64 `json:"avg_lifespan_days"`
}
