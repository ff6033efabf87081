package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"orderlens/internal/errors"
	"orderlens/internal/services"
	"orderlens/pkg/contracts/domain"
)

// table is one exportable derived table.
type table struct {
	name    string
	headers []string
	rows    [][]string
}

// CSVWriter exports snapshot tables as CSV.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_exporter"))}
}

// allTables flattens a snapshot into named header/row tables, the shared
// source for both the CSV and Excel exporters.
func allTables(s *services.DashboardSnapshot) []table {
	daily := table{name: "daily_orders", headers: []string{"date", "order_count", "revenue"}}
	for _, row := range s.Daily {
		daily.rows = append(daily.rows, []string{
			row.Date.Format("2006-01-02"),
			formatInt(row.OrderCount),
			formatFloat(row.Revenue),
		})
	}

	categories := table{name: "category_sales", headers: []string{"category", "items"}}
	for _, row := range s.Categories {
		categories.rows = append(categories.rows, []string{row.Category, formatInt(row.Items)})
	}

	rfm := table{name: "rfm", headers: []string{"customer_id", "frequency", "monetary", "recency"}}
	for _, row := range s.RFM {
		rfm.rows = append(rfm.rows, []string{
			row.CustomerID,
			formatInt(row.Frequency),
			formatFloat(row.Monetary),
			formatInt(row.Recency),
		})
	}

	tables := []table{daily, categories, rfm}
	tables = append(tables,
		breakdownTable("customers_by_state", "customer_state", s.ByState),
		breakdownTable("customers_by_payment", "payment_type", s.ByPayment),
		breakdownTable("customers_by_status", "order_status", s.ByStatus),
	)
	return tables
}

func breakdownTable(name, keyHeader string, rows []domain.CustomerBreakdownRow) table {
	t := table{name: name, headers: []string{keyHeader, "customers"}}
	for _, row := range rows {
		t.rows = append(t.rows, []string{row.Key, formatInt(row.Customers)})
	}
	return t
}

// WriteSnapshot writes every snapshot table as a CSV file under dir.
func (w *CSVWriter) WriteSnapshot(ctx context.Context, dir string, s *services.DashboardSnapshot) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create export directory", err)
	}

	for _, t := range allTables(s) {
		path := filepath.Join(dir, t.name+".csv")
		if err := w.writeFile(path, t); err != nil {
			return err
		}
		w.logger.InfoContext(ctx, "snapshot table exported",
			slog.String("path", path),
			slog.Int("rows", len(t.rows)))
	}
	return nil
}

// StreamSnapshot writes the full snapshot as one CSV stream, tables
// separated by a blank line. Used by the HTTP export endpoint.
func (w *CSVWriter) StreamSnapshot(out io.Writer, s *services.DashboardSnapshot) error {
	writer := csv.NewWriter(out)
	for i, t := range allTables(s) {
		if i > 0 {
			writer.Flush()
			if _, err := fmt.Fprintln(out); err != nil {
				return errors.NewStorageError("failed to write CSV stream", err)
			}
		}
		if err := writeTable(writer, t); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewStorageError("failed to flush CSV stream", err)
	}
	return nil
}

func (w *CSVWriter) writeFile(path string, t table) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create CSV export file", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writeTable(writer, t); err != nil {
		return err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewStorageError("failed to flush CSV export file", err)
	}
	return nil
}

func writeTable(writer *csv.Writer, t table) error {
	if err := writer.Write(t.headers); err != nil {
		return errors.NewStorageError("failed to write CSV header row", err)
	}
	for _, row := range t.rows {
		if err := writer.Write(row); err != nil {
			return errors.NewStorageError("failed to write CSV data row", err)
		}
	}
	return nil
}
