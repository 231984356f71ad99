package analytics

import (
	"slices"
	"sort"
	"time"

	"sales-insights/internal/models"
)

// Segment names, ordered best to worst.
const (
	segmentChampions   = "Champions"
	segmentLoyal       = "Loyal"
	segmentAtRisk      = "At Risk"
	segmentHibernating = "Hibernating"
)

var segmentOrder = []string{segmentChampions, segmentLoyal, segmentAtRisk, segmentHibernating}

type customerProfile struct {
	recencyDays float64
	frequency   float64
	monetary    float64
}

// computeSegments buckets customers by RFM quartile scores. Recency is
// measured against the dataset's latest order date so results do not depend
// on the wall clock.
func computeSegments(records []models.SalesRecord) []models.SegmentSummary {
	if len(records) == 0 {
		return nil
	}

	latest := records[0].OrderDate
	for _, r := range records {
		if r.OrderDate.After(latest) {
			latest = r.OrderDate
		}
	}

	lastOrders := make(map[string]time.Time)
	orderCounts := make(map[string]int)
	spend := make(map[string]float64)
	for _, r := range records {
		if cur, ok := lastOrders[r.CustomerID]; !ok || r.OrderDate.After(cur) {
			lastOrders[r.CustomerID] = r.OrderDate
		}
		orderCounts[r.CustomerID]++
		spend[r.CustomerID] += r.Revenue
	}

	ids := make([]string, 0, len(orderCounts))
	for id := range orderCounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	profiles := make([]customerProfile, len(ids))
	for i, id := range ids {
		profiles[i] = customerProfile{
			recencyDays: latest.Sub(lastOrders[id]).Hours() / 24,
			frequency:   float64(orderCounts[id]),
			monetary:    spend[id],
		}
	}

	recency := make([]float64, len(profiles))
	frequency := make([]float64, len(profiles))
	monetary := make([]float64, len(profiles))
	for i, p := range profiles {
		recency[i] = p.recencyDays
		frequency[i] = p.frequency
		monetary[i] = p.monetary
	}

	rScores := quartileScores(recency, true)
	fScores := quartileScores(frequency, false)
	mScores := quartileScores(monetary, false)

	type segAccum struct {
		customers int
		orders    float64
		spend     float64
		recency   float64
	}
	groups := make(map[string]*segAccum)

	for i := range profiles {
		name := segmentFor(rScores[i] + fScores[i] + mScores[i])
		g := groups[name]
		if g == nil {
			g = &segAccum{}
			groups[name] = g
		}
		g.customers++
		g.orders += profiles[i].frequency
		g.spend += profiles[i].monetary
		g.recency += profiles[i].recencyDays
	}

	result := make([]models.SegmentSummary, 0, len(groups))
	for _, name := range segmentOrder {
		g := groups[name]
		if g == nil {
			continue
		}
		n := float64(g.customers)
		result = append(result, models.SegmentSummary{
			Segment:        name,
			Customers:      g.customers,
			AvgOrders:      g.orders / n,
			AvgSpend:       g.spend / n,
			AvgRecencyDays: g.recency / n,
		})
	}
	return result
}

// segmentFor maps a combined RFM score (3..12) to a segment name.
func segmentFor(score int) string {
	switch {
	case score >= 10:
		return segmentChampions
	case score >= 8:
		return segmentLoyal
	case score >= 5:
		return segmentAtRisk
	default:
		return segmentHibernating
	}
}

// quartileScores assigns each value a score from 1 to 4 by quartile. With
// lowerIsBetter, smaller values score higher (used for recency).
func quartileScores(values []float64, lowerIsBetter bool) []int {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	q1 := percentile(sorted, 0.25)
	q2 := percentile(sorted, 0.50)
	q3 := percentile(sorted, 0.75)

	scores := make([]int, len(values))
	for i, v := range values {
		var s int
		switch {
		case v <= q1:
			s = 1
		case v <= q2:
			s = 2
		case v <= q3:
			s = 3
		default:
			s = 4
		}
		if lowerIsBetter {
			s = 5 - s
		}
		scores[i] = s
	}
	return scores
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
