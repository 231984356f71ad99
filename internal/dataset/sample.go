package dataset

import (
	"fmt"
	"math/rand"
	"time"

	"sales-insights/internal/models"
)

var (
	sampleCategories = []string{"Electronics", "Clothing", "Books", "Home", "Sports"}
	sampleRegions    = []string{"North", "South", "East", "West"}
	samplePayments   = []string{"Credit Card", "Debit Card", "PayPal", "Cash"}
)

var sampleStart = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// Sample generates n plausible sales records. The same seed always yields the
// same dataset, which the tests and the quick-export path rely on.
func Sample(n int, seed int64) []models.SalesRecord {
	rng := rand.New(rand.NewSource(seed))

	records := make([]models.SalesRecord, n)
	for i := range records {
		quantity := rng.Intn(10) + 1
		unitPrice := 10 + rng.Float64()*490

		records[i] = models.SalesRecord{
			OrderID:       fmt.Sprintf("%d", i+1),
			OrderDate:     sampleStart.Add(time.Duration(i) * time.Hour),
			CustomerID:    fmt.Sprintf("C%04d", rng.Intn(1000)+1),
			ProductID:     fmt.Sprintf("P%03d", rng.Intn(100)+1),
			Category:      sampleCategories[rng.Intn(len(sampleCategories))],
			Region:        sampleRegions[rng.Intn(len(sampleRegions))],
			PaymentMethod: samplePayments[rng.Intn(len(samplePayments))],
			Quantity:      quantity,
			UnitPrice:     unitPrice,
			Revenue:       float64(quantity) * unitPrice,
		}
	}
	return records
}
