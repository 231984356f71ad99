package dataset

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-insights/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

// Expected column order for CSV input. A trailing total column is tolerated
// and ignored; revenue is always recomputed from quantity and unit price.
const (
	colOrderID = iota
	colOrderDate
	colCustomerID
	colProductID
	colCategory
	colRegion
	colPayment
	colQuantity
	colUnitPrice
	minColumns = colUnitPrice + 1
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

// Load reads a sales dataset, dispatching on the file extension. Malformed
// rows are dropped silently; only an input that yields zero valid rows is an
// error.
func Load(ctx context.Context, path string) ([]models.SalesRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	default:
		return LoadCSV(ctx, path)
	}
}

// LoadCSV stream-processes a CSV file in batches with bounded concurrency.
func LoadCSV(ctx context.Context, path string) ([]models.SalesRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	// Skip header
	if !scanner.Scan() {
		return nil, fmt.Errorf("empty file")
	}

	var (
		records []models.SalesRecord
		dropped int
	)
	batch := make([]string, 0, batchSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		batch = append(batch, scanner.Text())

		if len(batch) >= batchSize {
			parsed, bad, err := parseBatch(ctx, batch)
			if err != nil {
				return nil, err
			}
			records = append(records, parsed...)
			dropped += bad
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		parsed, bad, err := parseBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		records = append(records, parsed...)
		dropped += bad
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan error: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no valid records found")
	}

	if dropped > 0 {
		slog.Warn("dropped malformed rows", "path", path, "dropped", dropped, "loaded", len(records))
	}

	return records, nil
}

func parseBatch(ctx context.Context, batch []string) ([]models.SalesRecord, int, error) {
	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	type parsedRow struct {
		rec   models.SalesRecord
		index int
		valid bool
	}

	rowChan := make(chan parsedRow, len(batch))

	for i, line := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rec, err := parseRow(strings.Split(line, ","))
			if err != nil {
				rowChan <- parsedRow{index: i}
				return nil // drop invalid rows quietly
			}
			rowChan <- parsedRow{rec: rec, index: i, valid: true}
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		close(rowChan)
		return nil, 0, err
	}
	close(rowChan)

	// Reassemble in input order so repeated loads of the same file produce
	// the same record sequence regardless of worker scheduling.
	ordered := make([]parsedRow, len(batch))
	for row := range rowChan {
		ordered[row.index] = row
	}

	records := make([]models.SalesRecord, 0, len(batch))
	dropped := 0
	for _, row := range ordered {
		if !row.valid {
			dropped++
			continue
		}
		records = append(records, row.rec)
	}
	return records, dropped, nil
}

func parseRow(fields []string) (models.SalesRecord, error) {
	if len(fields) < minColumns {
		return models.SalesRecord{}, fmt.Errorf("insufficient columns")
	}

	orderDate, err := parseDate(strings.TrimSpace(fields[colOrderDate]))
	if err != nil {
		return models.SalesRecord{}, err
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(fields[colQuantity]))
	if err != nil {
		return models.SalesRecord{}, err
	}
	if quantity <= 0 {
		return models.SalesRecord{}, fmt.Errorf("non-positive quantity")
	}

	unitPrice, err := strconv.ParseFloat(strings.TrimSpace(fields[colUnitPrice]), 64)
	if err != nil {
		return models.SalesRecord{}, err
	}
	if unitPrice < 0 {
		return models.SalesRecord{}, fmt.Errorf("negative unit price")
	}

	return models.SalesRecord{
		OrderID:       strings.TrimSpace(fields[colOrderID]),
		OrderDate:     orderDate,
		CustomerID:    strings.TrimSpace(fields[colCustomerID]),
		ProductID:     strings.TrimSpace(fields[colProductID]),
		Category:      strings.TrimSpace(fields[colCategory]),
		Region:        strings.TrimSpace(fields[colRegion]),
		PaymentMethod: strings.TrimSpace(fields[colPayment]),
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Revenue:       float64(quantity) * unitPrice,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
