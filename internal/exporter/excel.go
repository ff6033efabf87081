package exporter

import (
	"context"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"orderlens/internal/errors"
	"orderlens/internal/services"
)

// ExcelWriter exports a snapshot as a single workbook, one sheet per
// derived table.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new Excel writer instance
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger.With(slog.String("component", "excel_exporter"))}
}

// WriteSnapshot writes the workbook to path.
func (w *ExcelWriter) WriteSnapshot(ctx context.Context, path string, s *services.DashboardSnapshot) error {
	f, err := w.build(s)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save Excel export", err)
	}

	w.logger.InfoContext(ctx, "snapshot workbook exported", slog.String("path", path))
	return nil
}

// StreamSnapshot writes the workbook to an io.Writer, used by the HTTP
// export endpoint.
func (w *ExcelWriter) StreamSnapshot(out io.Writer, s *services.DashboardSnapshot) error {
	f, err := w.build(s)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return errors.NewStorageError("failed to write Excel stream", err)
	}
	return nil
}

func (w *ExcelWriter) build(s *services.DashboardSnapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, t := range allTables(s) {
		sheet := t.name
		if i == 0 {
			// The default sheet becomes the first table.
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return nil, errors.NewStorageError("failed to rename sheet", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, errors.NewStorageError("failed to create sheet", err)
			}
		}

		header := make([]interface{}, len(t.headers))
		for j, h := range t.headers {
			header[j] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, errors.NewStorageError("failed to write sheet header", err)
		}

		for rowIdx, row := range t.rows {
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
			if err != nil {
				return nil, errors.NewStorageError("failed to compute cell name", err)
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, errors.NewStorageError("failed to write sheet row", err)
			}
		}
	}

	return f, nil
}
