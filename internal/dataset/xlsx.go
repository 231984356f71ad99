package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sales-insights/internal/models"
)

// LoadXLSX reads the first sheet of a workbook. Columns are matched by
// header name with a positional fallback matching the CSV layout, so exports
// from spreadsheet tools with reordered columns still load.
func LoadXLSX(path string) ([]models.SalesRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	idx := detectColumns(rows[0])

	var out []models.SalesRecord
	for i, r := range rows {
		if i == 0 {
			continue
		}
		rec, err := recordFromCells(r, idx)
		if err != nil {
			continue // drop malformed rows quietly
		}
		out = append(out, rec)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no valid records found")
	}
	return out, nil
}

type columnIndex struct {
	orderID, orderDate, customerID, productID, category, region, payment, quantity, unitPrice int
}

func detectColumns(header []string) columnIndex {
	// Positional fallback mirrors the CSV layout.
	idx := columnIndex{
		orderID:    colOrderID,
		orderDate:  colOrderDate,
		customerID: colCustomerID,
		productID:  colProductID,
		category:   colCategory,
		region:     colRegion,
		payment:    colPayment,
		quantity:   colQuantity,
		unitPrice:  colUnitPrice,
	}
	for i, h := range header {
		switch n := strings.ToLower(strings.TrimSpace(h)); {
		case strings.Contains(n, "order") && strings.Contains(n, "id"):
			idx.orderID = i
		case strings.Contains(n, "date"):
			idx.orderDate = i
		case strings.Contains(n, "customer") || strings.Contains(n, "user"):
			idx.customerID = i
		case strings.Contains(n, "product") || strings.Contains(n, "item"):
			idx.productID = i
		case strings.Contains(n, "category"):
			idx.category = i
		case strings.Contains(n, "region") || strings.Contains(n, "location"):
			idx.region = i
		case strings.Contains(n, "payment"):
			idx.payment = i
		case strings.Contains(n, "quantity") || n == "qty":
			idx.quantity = i
		case strings.Contains(n, "price"):
			idx.unitPrice = i
		}
	}
	return idx
}

func recordFromCells(cells []string, idx columnIndex) (models.SalesRecord, error) {
	cell := func(i int) string {
		if i >= 0 && i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	orderDate, err := parseDate(cell(idx.orderDate))
	if err != nil {
		return models.SalesRecord{}, err
	}
	quantity, err := strconv.Atoi(cell(idx.quantity))
	if err != nil || quantity <= 0 {
		return models.SalesRecord{}, fmt.Errorf("bad quantity")
	}
	unitPrice, err := strconv.ParseFloat(cell(idx.unitPrice), 64)
	if err != nil || unitPrice < 0 {
		return models.SalesRecord{}, fmt.Errorf("bad unit price")
	}

	return models.SalesRecord{
		OrderID:       cell(idx.orderID),
		OrderDate:     orderDate,
		CustomerID:    cell(idx.customerID),
		ProductID:     cell(idx.productID),
		Category:      cell(idx.category),
		Region:        cell(idx.region),
		PaymentMethod: cell(idx.payment),
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Revenue:       float64(quantity) * unitPrice,
	}, nil
}
