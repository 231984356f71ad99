package models

import "time"

// SalesRecord is one sales transaction row. Records are immutable once
// loaded; Revenue is always recomputed as Quantity*UnitPrice so a stale or
// missing total column in the source file cannot skew aggregates.
type SalesRecord struct {
	OrderID       string
	OrderDate     time.Time
	CustomerID    string
	ProductID     string
	Category      string
	Region        string
	PaymentMethod string
	Quantity      int
	UnitPrice     float64
	Revenue       float64
}
