package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"orderlens/internal/errors"
	"orderlens/pkg/contracts/domain"
)

// Required dataset columns, matched against the header row by name.
var requiredColumns = []string{
	"order_id",
	"order_item_id",
	"customer_id",
	"customer_unique_id",
	"customer_state",
	"order_purchase_timestamp",
	"order_delivered_carrier_date",
	"price",
	"payment_type",
	"order_status",
	"product_category_name_english",
}

// timestampLayouts are tried in order when parsing the two date-time
// columns. The dataset ships with "2006-01-02 15:04:05" values.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

// Loader reads the raw order dataset into memory. Timestamp columns are
// parsed eagerly: a row whose purchase timestamp does not parse fails the
// whole load instead of being dropped silently.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a dataset loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the dataset at path. CSV and XLSX inputs are supported,
// picked by file extension. The returned dataset carries the min/max
// purchase-date bounds used for the default filter range.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	l.logger.InfoContext(ctx, "loading order dataset", slog.String("path", path))

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.NewDatasetError("dataset has no header row", nil).WithContext("path", path)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, errors.NewDatasetError("dataset contains no records", nil).WithContext("path", path)
	}

	records := make([]domain.OrderRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		record, err := parseRecord(row, columns)
		if err != nil {
			// Header is row 1, so data row i is line i+2.
			return nil, errors.NewDatasetError("malformed dataset row", err).WithContext("line", i+2)
		}
		records = append(records, record)
	}

	ds := &domain.Dataset{Records: records}
	ds.MinDate, ds.MaxDate = purchaseBounds(records)

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("records", len(records)),
		slog.Time("min_date", ds.MinDate),
		slog.Time("max_date", ds.MaxDate))

	return ds, nil
}

// readCSV reads all rows of a CSV file including the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDatasetError("failed to open dataset file", err).WithContext("path", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // length is validated per row against the column map

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewDatasetError("failed to read dataset CSV", err).WithContext("path", path)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readXLSX reads all rows of the first sheet of an Excel workbook.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewDatasetError("failed to open dataset workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewDatasetError("dataset workbook has no sheets", nil).WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewDatasetError("failed to read dataset sheet", err).WithContext("sheet", sheets[0])
	}
	return rows, nil
}

// mapColumns maps required column names to their positions in the header
// row. Every required column must be present.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, errors.NewDatasetError("dataset is missing a required column", nil).WithContext("column", name)
		}
	}
	return columns, nil
}

// parseRecord converts one data row into an OrderRecord.
func parseRecord(row []string, columns map[string]int) (domain.OrderRecord, error) {
	cell := func(name string) string {
		idx := columns[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	purchasedAt, err := parseTimestamp(cell("order_purchase_timestamp"))
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("order_purchase_timestamp: %w", err)
	}

	var deliveredAt *time.Time
	if raw := cell("order_delivered_carrier_date"); raw != "" {
		t, err := parseTimestamp(raw)
		if err != nil {
			return domain.OrderRecord{}, fmt.Errorf("order_delivered_carrier_date: %w", err)
		}
		deliveredAt = &t
	}

	itemID, err := strconv.Atoi(cell("order_item_id"))
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("order_item_id: %w", err)
	}

	price, err := strconv.ParseFloat(cell("price"), 64)
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("price: %w", err)
	}

	return domain.OrderRecord{
		OrderID:            cell("order_id"),
		OrderItemID:        itemID,
		CustomerID:         cell("customer_id"),
		CustomerUniqueID:   cell("customer_unique_id"),
		CustomerState:      cell("customer_state"),
		PurchasedAt:        purchasedAt,
		DeliveredCarrierAt: deliveredAt,
		Price:              price,
		PaymentType:        cell("payment_type"),
		OrderStatus:        cell("order_status"),
		ProductCategory:    cell("product_category_name_english"),
	}, nil
}

// parseTimestamp tries the known layouts in order.
func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

// purchaseBounds returns the min/max purchase date components.
func purchaseBounds(records []domain.OrderRecord) (time.Time, time.Time) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}
	}

	min := records[0].PurchaseDate()
	max := min
	for _, r := range records[1:] {
		d := r.PurchaseDate()
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}
	return min, max
}
