package analytics

import (
	"slices"
	"strings"
	"time"

	"sales-insights/internal/models"
)

// computeCohorts builds the first-purchase-month retention matrix. Cell k of
// a cohort counts distinct customers from that cohort with at least one order
// k calendar months after their first order, so cell 0 is the cohort size.
func computeCohorts(records []models.SalesRecord) []models.CohortRow {
	if len(records) == 0 {
		return nil
	}

	firstOrder := make(map[string]time.Time)
	for _, r := range records {
		if cur, ok := firstOrder[r.CustomerID]; !ok || r.OrderDate.Before(cur) {
			firstOrder[r.CustomerID] = r.OrderDate
		}
	}

	// active[cohort][offset] holds the distinct customers seen in that cell.
	active := make(map[string]map[int]map[string]struct{})
	maxOffset := 0

	for _, r := range records {
		first := firstOrder[r.CustomerID]
		cohort := first.Format(monthlyPeriod)
		offset := monthsBetween(first, r.OrderDate)
		if offset < 0 {
			continue
		}
		if offset > maxOffset {
			maxOffset = offset
		}

		offsets := active[cohort]
		if offsets == nil {
			offsets = make(map[int]map[string]struct{})
			active[cohort] = offsets
		}
		cell := offsets[offset]
		if cell == nil {
			cell = make(map[string]struct{})
			offsets[offset] = cell
		}
		cell[r.CustomerID] = struct{}{}
	}

	rows := make([]models.CohortRow, 0, len(active))
	for cohort, offsets := range active {
		row := models.CohortRow{
			Cohort: cohort,
			Size:   len(offsets[0]),
			Active: make([]int, maxOffset+1),
		}
		for offset, customers := range offsets {
			row.Active[offset] = len(customers)
		}
		rows = append(rows, row)
	}

	slices.SortFunc(rows, func(a, b models.CohortRow) int {
		return strings.Compare(a.Cohort, b.Cohort)
	})
	return rows
}

func computeRetention(records []models.SalesRecord) models.RetentionSummary {
	var ret models.RetentionSummary
	if len(records) == 0 {
		return ret
	}

	type span struct {
		first, last time.Time
	}
	spans := make(map[string]*span)
	for _, r := range records {
		s := spans[r.CustomerID]
		if s == nil {
			spans[r.CustomerID] = &span{first: r.OrderDate, last: r.OrderDate}
			continue
		}
		if r.OrderDate.Before(s.first) {
			s.first = r.OrderDate
		}
		if r.OrderDate.After(s.last) {
			s.last = r.OrderDate
		}
	}

	var lifespanDays float64
	for _, s := range spans {
		if s.last.After(s.first) {
			ret.RepeatCustomers++
		}
		lifespanDays += s.last.Sub(s.first).Hours() / 24
	}

	ret.TotalCustomers = len(spans)
	ret.RepeatRate = float64(ret.RepeatCustomers) / float64(ret.TotalCustomers)
	ret.AvgLifespanDays = lifespanDays / float64(ret.TotalCustomers)
	return ret
}

// monthsBetween counts whole calendar months from a's month to b's month.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
