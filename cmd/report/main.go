// Command report runs one filter-and-aggregate cycle over the order
// dataset and writes the derived tables to disk, without the HTTP shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"orderlens/internal/config"
	"orderlens/internal/dataprocessing"
	"orderlens/internal/exporter"
	"orderlens/internal/infrastructure"
	"orderlens/internal/services"
)

func main() {
	var (
		datasetPath = flag.String("dataset", "", "path to the order dataset (csv or xlsx); defaults to the configured path")
		fromStr     = flag.String("from", "", "range start (YYYY-MM-DD); defaults to the dataset minimum")
		toStr       = flag.String("to", "", "range end (YYYY-MM-DD); defaults to the dataset maximum")
		outDir      = flag.String("out", "exports", "output directory")
		format      = flag.String("format", "csv", "output format: csv or xlsx")
	)
	flag.Parse()

	if err := run(*datasetPath, *fromStr, *toStr, *outDir, *format); err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}
}

func run(datasetPath, fromStr, toStr, outDir, format string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if datasetPath == "" {
		datasetPath = cfg.Dataset.Path
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)

	var start, end time.Time
	if fromStr != "" {
		if start, err = time.Parse("2006-01-02", fromStr); err != nil {
			return fmt.Errorf("invalid -from date: %w", err)
		}
	}
	if toStr != "" {
		if end, err = time.Parse("2006-01-02", toStr); err != nil {
			return fmt.Errorf("invalid -to date: %w", err)
		}
	}

	loader := dataprocessing.NewLoader(logger)
	dataset, err := loader.Load(ctx, datasetPath)
	if err != nil {
		return err
	}

	presenter := dataprocessing.NewPresenter(logger, dataprocessing.PresenterConfig{
		Currency: cfg.Dataset.Currency,
		Locale:   cfg.Dataset.Locale,
		TopN:     cfg.Export.TopN,
	})
	dashboard := services.NewDashboardService(dataset, dataprocessing.NewAnalyzer(logger), presenter, logger)

	snapshot, err := dashboard.Snapshot(ctx, start, end)
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		if err := exporter.NewCSVWriter(logger).WriteSnapshot(ctx, outDir, snapshot); err != nil {
			return err
		}
	case "xlsx":
		path := filepath.Join(outDir, "orderlens.xlsx")
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := exporter.NewExcelWriter(logger).WriteSnapshot(ctx, path, snapshot); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q (want csv or xlsx)", format)
	}

	fmt.Printf("Range:         %s .. %s\n",
		snapshot.Range.Start.Format("2006-01-02"),
		snapshot.Range.End.Format("2006-01-02"))
	fmt.Printf("Total orders:  %d\n", snapshot.Summary.TotalOrders)
	fmt.Printf("Total revenue: %s\n", snapshot.Summary.TotalRevenueDisplay)
	fmt.Printf("Customers:     %d\n", len(snapshot.RFM))
	fmt.Printf("Avg recency:   %.1f days\n", snapshot.RFMAverages.Recency)
	fmt.Printf("Avg frequency: %.2f\n", snapshot.RFMAverages.Frequency)
	fmt.Printf("Avg monetary:  %s\n", snapshot.Summary.AvgMonetaryDisplay)

	return nil
}
