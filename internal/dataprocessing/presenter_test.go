package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderlens/pkg/contracts/domain"
)

func newTestPresenter(t *testing.T) *Presenter {
	t.Helper()
	return NewPresenter(nil, DefaultPresenterConfig())
}

func TestPresenter_FormatCurrency(t *testing.T) {
	p := newTestPresenter(t)

	got := p.FormatCurrency(1234.5)
	assert.Contains(t, got, "1,234.5")
	assert.Contains(t, got, "$", "AUD renders with a dollar symbol")
}

func TestPresenter_Summary(t *testing.T) {
	p := newTestPresenter(t)

	daily := []domain.DailyOrdersRow{
		{Date: day("2018-01-01"), OrderCount: 1, Revenue: 15},
		{Date: day("2018-01-03"), OrderCount: 1, Revenue: 20},
	}
	averages := domain.RFMAverages{Recency: 1, Frequency: 1, Monetary: 17.5}

	summary := p.Summary(daily, averages)

	assert.Equal(t, 2, summary.TotalOrders)
	assert.Equal(t, 35.0, summary.TotalRevenue)
	assert.NotEmpty(t, summary.TotalRevenueDisplay)
	assert.Equal(t, 1.0, summary.AvgRecency)
	assert.Equal(t, 17.5, summary.AvgMonetary)
	assert.NotEmpty(t, summary.AvgMonetaryDisplay)
}

func TestPresenter_Categories(t *testing.T) {
	p := newTestPresenter(t)

	// Already sorted descending, the analyzer's contract.
	sales := []domain.CategorySales{
		{Category: "toys", Items: 9},
		{Category: "books", Items: 7},
		{Category: "garden", Items: 3},
		{Category: "pets", Items: 1},
	}

	h := p.Categories(sales, 2)

	assert.Equal(t, sales[:2], h.Top)
	assert.Equal(t, []domain.CategorySales{
		{Category: "pets", Items: 1},
		{Category: "garden", Items: 3},
	}, h.Bottom, "bottom chart lists weakest first")
	assert.Equal(t, sales[0], h.Best)
	assert.Equal(t, sales[3], h.Worst)
}

func TestPresenter_Categories_NLargerThanTable(t *testing.T) {
	p := newTestPresenter(t)

	sales := []domain.CategorySales{{Category: "toys", Items: 2}}

	h := p.Categories(sales, 10)
	assert.Equal(t, sales, h.Top)
	assert.Equal(t, sales, h.Bottom)
}

func TestPresenter_Categories_Empty(t *testing.T) {
	p := newTestPresenter(t)

	h := p.Categories(nil, 5)
	assert.Empty(t, h.Top)
	assert.Empty(t, h.Bottom)
}

func TestPresenter_DailySeries(t *testing.T) {
	p := newTestPresenter(t)

	rows := []domain.DailyOrdersRow{
		{Date: day("2018-01-01"), OrderCount: 1, Revenue: 15},
		{Date: day("2018-01-03"), OrderCount: 1, Revenue: 20},
	}

	t.Run("without fill the sparse rows pass through", func(t *testing.T) {
		series := p.DailySeries(rows, false, day("2018-01-01"), day("2018-01-03"))
		assert.Equal(t, rows, series)
	})

	t.Run("with fill missing days become zero rows", func(t *testing.T) {
		series := p.DailySeries(rows, true, day("2018-01-01"), day("2018-01-03"))
		require.Len(t, series, 3)
		assert.Equal(t, rows[0], series[0])
		assert.Equal(t, domain.DailyOrdersRow{Date: day("2018-01-02")}, series[1])
		assert.Equal(t, rows[1], series[2])
	})

	t.Run("fill covers the requested grid, not just the data", func(t *testing.T) {
		series := p.DailySeries(rows, true, day("2017-12-31"), day("2018-01-04"))
		require.Len(t, series, 5)
		assert.Equal(t, 0, series[0].OrderCount)
		assert.Equal(t, 0, series[4].OrderCount)
	})
}

func TestPresenter_Leaderboards(t *testing.T) {
	p := newTestPresenter(t)

	rows := []domain.RFMRow{
		{CustomerID: "C1", Frequency: 3, Monetary: 50, Recency: 10},
		{CustomerID: "C2", Frequency: 1, Monetary: 200, Recency: 0},
		{CustomerID: "C3", Frequency: 5, Monetary: 80, Recency: 4},
	}

	boards := p.Leaderboards(rows, 2)

	require.Len(t, boards.ByRecency, 2)
	assert.Equal(t, "C2", boards.ByRecency[0].CustomerID, "lowest recency ranks first")
	assert.Equal(t, "C3", boards.ByRecency[1].CustomerID)

	require.Len(t, boards.ByFrequency, 2)
	assert.Equal(t, "C3", boards.ByFrequency[0].CustomerID)
	assert.Equal(t, "C1", boards.ByFrequency[1].CustomerID)

	require.Len(t, boards.ByMonetary, 2)
	assert.Equal(t, "C2", boards.ByMonetary[0].CustomerID)
	assert.Equal(t, "C3", boards.ByMonetary[1].CustomerID)
}

func TestPresenter_Leaderboards_TieBreaksOnCustomerID(t *testing.T) {
	p := newTestPresenter(t)

	rows := []domain.RFMRow{
		{CustomerID: "C2", Frequency: 1, Monetary: 10, Recency: 3},
		{CustomerID: "C1", Frequency: 1, Monetary: 10, Recency: 3},
	}

	boards := p.Leaderboards(rows, 2)
	assert.Equal(t, "C1", boards.ByRecency[0].CustomerID)
	assert.Equal(t, "C1", boards.ByFrequency[0].CustomerID)
	assert.Equal(t, "C1", boards.ByMonetary[0].CustomerID)
}
