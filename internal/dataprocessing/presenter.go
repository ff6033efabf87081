package dataprocessing

import (
	"log/slog"
	"sort"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"orderlens/pkg/contracts/domain"
)

// Presenter shapes aggregation output for display. It owns no business
// logic: top/bottom selections, zero-filled day grids and currency
// strings only. The numeric values in the underlying tables are never
// touched.
type Presenter struct {
	logger  *slog.Logger
	printer *message.Printer
	unit    currency.Unit
	topN    int
}

// PresenterConfig holds display configuration for the Presenter.
type PresenterConfig struct {
	Currency string // ISO 4217 code used for formatted amounts
	Locale   string // BCP 47 tag for number formatting
	TopN     int    // default size of top/bottom selections
}

// DefaultPresenterConfig mirrors the dashboard defaults.
func DefaultPresenterConfig() PresenterConfig {
	return PresenterConfig{Currency: "AUD", Locale: "en", TopN: 5}
}

// SummaryMetrics are the headline scalars shown above the charts.
// Display fields are formatted currency strings; the raw values stay in
// the numeric fields.
type SummaryMetrics struct {
	TotalOrders         int     `json:"total_orders"`
	TotalRevenue        float64 `json:"total_revenue"`
	TotalRevenueDisplay string  `json:"total_revenue_display"`
	AvgRecency          float64 `json:"avg_recency"`
	AvgFrequency        float64 `json:"avg_frequency"`
	AvgMonetary         float64 `json:"avg_monetary"`
	AvgMonetaryDisplay  string  `json:"avg_monetary_display"`
}

// CategoryHighlights are the top and bottom performing categories plus
// the extremes, as shown on the product sales charts.
type CategoryHighlights struct {
	Top    []domain.CategorySales `json:"top"`
	Bottom []domain.CategorySales `json:"bottom"`
	Best   domain.CategorySales   `json:"best"`
	Worst  domain.CategorySales   `json:"worst"`
}

// RFMLeaderboards are the per-component top customers of the RFM charts.
type RFMLeaderboards struct {
	ByRecency   []domain.RFMRow `json:"by_recency"`
	ByFrequency []domain.RFMRow `json:"by_frequency"`
	ByMonetary  []domain.RFMRow `json:"by_monetary"`
}

// NewPresenter creates a presentation adapter. An unknown locale falls
// back to English rather than failing the whole dashboard.
func NewPresenter(logger *slog.Logger, cfg PresenterConfig) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		logger.Warn("unknown locale, falling back to English", slog.String("locale", cfg.Locale))
		tag = language.English
	}

	unit, err := currency.ParseISO(cfg.Currency)
	if err != nil {
		logger.Warn("unknown currency code, falling back to USD", slog.String("currency", cfg.Currency))
		unit = currency.USD
	}

	return &Presenter{
		logger:  logger.With(slog.String("component", "presenter")),
		printer: message.NewPrinter(tag),
		unit:    unit,
		topN:    cfg.TopN,
	}
}

// FormatCurrency renders an amount with the configured currency symbol
// and locale. Display only; stored values are raw decimals.
func (p *Presenter) FormatCurrency(amount float64) string {
	return p.printer.Sprintf("%v", currency.Symbol(p.unit.Amount(amount)))
}

// Summary condenses the daily table and RFM averages into the headline
// metrics.
func (p *Presenter) Summary(daily []domain.DailyOrdersRow, averages domain.RFMAverages) SummaryMetrics {
	var orders int
	var revenue float64
	for _, row := range daily {
		orders += row.OrderCount
		revenue += row.Revenue
	}

	return SummaryMetrics{
		TotalOrders:         orders,
		TotalRevenue:        revenue,
		TotalRevenueDisplay: p.FormatCurrency(revenue),
		AvgRecency:          averages.Recency,
		AvgFrequency:        averages.Frequency,
		AvgMonetary:         averages.Monetary,
		AvgMonetaryDisplay:  p.FormatCurrency(averages.Monetary),
	}
}

// Categories picks the top and bottom n categories from the already
// descending-sorted sales table. n <= 0 uses the configured default.
// Sorting is deterministic because the analyzer tie-breaks on name.
func (p *Presenter) Categories(sales []domain.CategorySales, n int) CategoryHighlights {
	if n <= 0 {
		n = p.topN
	}

	h := CategoryHighlights{}
	if len(sales) == 0 {
		return h
	}

	top := n
	if top > len(sales) {
		top = len(sales)
	}
	h.Top = append([]domain.CategorySales(nil), sales[:top]...)

	bottom := n
	if bottom > len(sales) {
		bottom = len(sales)
	}
	h.Bottom = append([]domain.CategorySales(nil), sales[len(sales)-bottom:]...)
	// Bottom chart lists weakest first.
	sort.Slice(h.Bottom, func(i, j int) bool {
		if h.Bottom[i].Items != h.Bottom[j].Items {
			return h.Bottom[i].Items < h.Bottom[j].Items
		}
		return h.Bottom[i].Category < h.Bottom[j].Category
	})

	h.Best = sales[0]
	h.Worst = sales[len(sales)-1]
	return h
}

// DailySeries returns the chart series for the daily orders line chart.
// With fill set, days of the [start, end] grid without orders appear as
// zero rows; resampling to a full grid is a presentation choice, not part
// of the aggregation contract.
func (p *Presenter) DailySeries(rows []domain.DailyOrdersRow, fill bool, start, end time.Time) []domain.DailyOrdersRow {
	if !fill {
		return rows
	}

	byDay := make(map[int64]domain.DailyOrdersRow, len(rows))
	for _, row := range rows {
		byDay[row.Date.Unix()] = row
	}

	startDay := domain.DateOf(start)
	endDay := domain.DateOf(end)

	var series []domain.DailyOrdersRow
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		if row, ok := byDay[d.Unix()]; ok {
			series = append(series, row)
			continue
		}
		series = append(series, domain.DailyOrdersRow{Date: d})
	}
	return series
}

// Leaderboards selects the standout customers per RFM component: lowest
// recency, highest frequency, highest monetary. Ties fall back to the
// customer ID so repeated renders stay identical.
func (p *Presenter) Leaderboards(rows []domain.RFMRow, n int) RFMLeaderboards {
	if n <= 0 {
		n = p.topN
	}

	byRecency := append([]domain.RFMRow(nil), rows...)
	sort.Slice(byRecency, func(i, j int) bool {
		if byRecency[i].Recency != byRecency[j].Recency {
			return byRecency[i].Recency < byRecency[j].Recency
		}
		return byRecency[i].CustomerID < byRecency[j].CustomerID
	})

	byFrequency := append([]domain.RFMRow(nil), rows...)
	sort.Slice(byFrequency, func(i, j int) bool {
		if byFrequency[i].Frequency != byFrequency[j].Frequency {
			return byFrequency[i].Frequency > byFrequency[j].Frequency
		}
		return byFrequency[i].CustomerID < byFrequency[j].CustomerID
	})

	byMonetary := append([]domain.RFMRow(nil), rows...)
	sort.Slice(byMonetary, func(i, j int) bool {
		if byMonetary[i].Monetary != byMonetary[j].Monetary {
			return byMonetary[i].Monetary > byMonetary[j].Monetary
		}
		return byMonetary[i].CustomerID < byMonetary[j].CustomerID
	})

	if n > len(rows) {
		n = len(rows)
	}

	return RFMLeaderboards{
		ByRecency:   byRecency[:n],
		ByFrequency: byFrequency[:n],
		ByMonetary:  byMonetary[:n],
	}
}
