package services

import (
	"context"
	"log/slog"
	"time"

	"orderlens/internal/dataprocessing"
	"orderlens/internal/errors"
	"orderlens/pkg/contracts/domain"
)

// DashboardService owns the loaded dataset and recomputes the full
// dashboard snapshot for each requested date range. The dataset is
// immutable after construction; every Snapshot call derives a fresh
// bundle of tables and shares nothing with previous calls.
type DashboardService struct {
	dataset   *domain.Dataset
	analyzer  *dataprocessing.Analyzer
	presenter *dataprocessing.Presenter
	logger    *slog.Logger
}

// DateRange is the resolved inclusive range a snapshot was computed for.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DashboardSnapshot bundles every derived table for one filter cycle.
// Snapshots are scoped to the request that produced them and are not
// cached or mutated.
type DashboardSnapshot struct {
	Range       DateRange                            `json:"range"`
	Summary     dataprocessing.SummaryMetrics        `json:"summary"`
	Daily       []domain.DailyOrdersRow              `json:"daily"`
	Categories  []domain.CategorySales               `json:"categories"`
	Highlights  dataprocessing.CategoryHighlights    `json:"highlights"`
	ByState     []domain.CustomerBreakdownRow        `json:"by_state"`
	ByPayment   []domain.CustomerBreakdownRow        `json:"by_payment"`
	ByStatus    []domain.CustomerBreakdownRow        `json:"by_status"`
	RFM         []domain.RFMRow                      `json:"rfm"`
	RFMAverages domain.RFMAverages                   `json:"rfm_averages"`
	Leaders     dataprocessing.RFMLeaderboards       `json:"leaders"`
}

// NewDashboardService creates the service around an already-loaded
// dataset.
func NewDashboardService(dataset *domain.Dataset, analyzer *dataprocessing.Analyzer, presenter *dataprocessing.Presenter, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		dataset:   dataset,
		analyzer:  analyzer,
		presenter: presenter,
		logger:    logger.With(slog.String("component", "dashboard_service")),
	}
}

// Bounds returns the purchase-date bounds of the dataset, used as the
// default and maximal filter range.
func (s *DashboardService) Bounds() DateRange {
	return DateRange{Start: s.dataset.MinDate, End: s.dataset.MaxDate}
}

// ResolveRange substitutes the dataset bounds for zero endpoints.
func (s *DashboardService) ResolveRange(start, end time.Time) DateRange {
	r := DateRange{Start: start, End: end}
	if r.Start.IsZero() {
		r.Start = s.dataset.MinDate
	}
	if r.End.IsZero() {
		r.End = s.dataset.MaxDate
	}
	return r
}

// Snapshot filters the dataset to the inclusive range and recomputes
// every derived table. A range excluding all data surfaces the
// empty-input error; it is never silently rendered as zeroes.
func (s *DashboardService) Snapshot(ctx context.Context, start, end time.Time) (*DashboardSnapshot, error) {
	rng := s.ResolveRange(start, end)

	records, err := dataprocessing.FilterRange(s.dataset, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.NewEmptyInputError("no orders in the requested date range").
			WithContext("start", rng.Start.Format("2006-01-02")).
			WithContext("end", rng.End.Format("2006-01-02"))
	}

	started := time.Now()

	daily, err := s.analyzer.DailyOrders(ctx, records)
	if err != nil {
		return nil, err
	}

	categories, err := s.analyzer.CategorySales(ctx, records)
	if err != nil {
		return nil, err
	}

	byState, err := s.analyzer.CustomersByState(ctx, records)
	if err != nil {
		return nil, err
	}

	byPayment, err := s.analyzer.CustomersByPayment(ctx, records)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.analyzer.CustomersByStatus(ctx, records)
	if err != nil {
		return nil, err
	}

	rfm, err := s.analyzer.RFM(ctx, records)
	if err != nil {
		return nil, err
	}

	averages, err := s.analyzer.RFMAverages(rfm)
	if err != nil {
		return nil, err
	}

	snapshot := &DashboardSnapshot{
		Range:       DateRange{Start: domain.DateOf(rng.Start), End: domain.DateOf(rng.End)},
		Summary:     s.presenter.Summary(daily, averages),
		Daily:       daily,
		Categories:  categories,
		Highlights:  s.presenter.Categories(categories, 0),
		ByState:     byState,
		ByPayment:   byPayment,
		ByStatus:    byStatus,
		RFM:         rfm,
		RFMAverages: averages,
		Leaders:     s.presenter.Leaderboards(rfm, 0),
	}

	s.logger.InfoContext(ctx, "dashboard snapshot computed",
		slog.Time("start", snapshot.Range.Start),
		slog.Time("end", snapshot.Range.End),
		slog.Int("records", len(records)),
		slog.Int("customers", len(rfm)),
		slog.Duration("elapsed", time.Since(started)))

	return snapshot, nil
}

// FilteredRecords exposes the filtered subset for per-table endpoints
// that do not need the full snapshot.
func (s *DashboardService) FilteredRecords(start, end time.Time) ([]domain.OrderRecord, error) {
	rng := s.ResolveRange(start, end)
	return dataprocessing.FilterRange(s.dataset, rng.Start, rng.End)
}

// Analyzer exposes the aggregation engine for per-table endpoints.
func (s *DashboardService) Analyzer() *dataprocessing.Analyzer {
	return s.analyzer
}

// Presenter exposes the display adapter for per-table endpoints.
func (s *DashboardService) Presenter() *dataprocessing.Presenter {
	return s.presenter
}
