package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderlens/internal/dataprocessing"
	"orderlens/internal/errors"
	"orderlens/pkg/contracts/domain"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestService(t *testing.T) *DashboardService {
	t.Helper()

	records := []domain.OrderRecord{
		{OrderID: "A", OrderItemID: 1, CustomerID: "C1", CustomerUniqueID: "U1", CustomerState: "SP", PurchasedAt: day("2018-01-01"), Price: 10, PaymentType: "credit_card", OrderStatus: "delivered", ProductCategory: "toys"},
		{OrderID: "A", OrderItemID: 2, CustomerID: "C1", CustomerUniqueID: "U1", CustomerState: "SP", PurchasedAt: day("2018-01-01"), Price: 5, PaymentType: "credit_card", OrderStatus: "delivered", ProductCategory: "toys"},
		{OrderID: "B", OrderItemID: 1, CustomerID: "C2", CustomerUniqueID: "U2", CustomerState: "RJ", PurchasedAt: day("2018-01-03"), Price: 20, PaymentType: "boleto", OrderStatus: "shipped", ProductCategory: "books"},
		{OrderID: "C", OrderItemID: 1, CustomerID: "C3", CustomerUniqueID: "U3", CustomerState: "SP", PurchasedAt: day("2018-01-10"), Price: 40, PaymentType: "voucher", OrderStatus: "delivered", ProductCategory: "garden"},
	}
	dataset := &domain.Dataset{
		Records: records,
		MinDate: day("2018-01-01"),
		MaxDate: day("2018-01-10"),
	}

	analyzer := dataprocessing.NewAnalyzer(nil)
	presenter := dataprocessing.NewPresenter(nil, dataprocessing.DefaultPresenterConfig())
	return NewDashboardService(dataset, analyzer, presenter, nil)
}

func TestDashboardService_Bounds(t *testing.T) {
	svc := newTestService(t)

	bounds := svc.Bounds()
	assert.Equal(t, day("2018-01-01"), bounds.Start)
	assert.Equal(t, day("2018-01-10"), bounds.End)
}

func TestDashboardService_ResolveRange(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name       string
		start, end time.Time
		want       DateRange
	}{
		{
			name: "zero values fall back to dataset bounds",
			want: DateRange{Start: day("2018-01-01"), End: day("2018-01-10")},
		},
		{
			name:  "explicit start keeps default end",
			start: day("2018-01-03"),
			want:  DateRange{Start: day("2018-01-03"), End: day("2018-01-10")},
		},
		{
			name:  "fully explicit range passes through",
			start: day("2018-01-02"),
			end:   day("2018-01-04"),
			want:  DateRange{Start: day("2018-01-02"), End: day("2018-01-04")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.ResolveRange(tt.start, tt.end))
		})
	}
}

func TestDashboardService_Snapshot(t *testing.T) {
	svc := newTestService(t)

	snapshot, err := svc.Snapshot(context.Background(), day("2018-01-01"), day("2018-01-03"))
	require.NoError(t, err)

	assert.Equal(t, DateRange{Start: day("2018-01-01"), End: day("2018-01-03")}, snapshot.Range)

	// Order C on Jan 10 is outside the range everywhere.
	assert.Equal(t, 2, snapshot.Summary.TotalOrders)
	assert.Equal(t, 35.0, snapshot.Summary.TotalRevenue)

	require.Len(t, snapshot.Daily, 2)
	assert.Equal(t, day("2018-01-01"), snapshot.Daily[0].Date)

	require.Len(t, snapshot.Categories, 2)
	assert.Equal(t, "toys", snapshot.Categories[0].Category)

	require.Len(t, snapshot.RFM, 2)
	assert.Equal(t, "C1", snapshot.RFM[0].CustomerID)
	assert.Equal(t, 2, snapshot.RFM[0].Recency)
	assert.Equal(t, 15.0, snapshot.RFM[0].Monetary)

	assert.InDelta(t, 1.0, snapshot.RFMAverages.Recency, 1e-9)
	assert.InDelta(t, 17.5, snapshot.RFMAverages.Monetary, 1e-9)

	assert.Equal(t, []domain.CustomerBreakdownRow{
		{Key: "RJ", Customers: 1},
		{Key: "SP", Customers: 1},
	}, snapshot.ByState)

	require.NotEmpty(t, snapshot.Leaders.ByMonetary)
	assert.Equal(t, "C2", snapshot.Leaders.ByMonetary[0].CustomerID)
}

func TestDashboardService_Snapshot_DefaultsToFullRange(t *testing.T) {
	svc := newTestService(t)

	snapshot, err := svc.Snapshot(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 3, snapshot.Summary.TotalOrders)
	assert.Equal(t, 75.0, snapshot.Summary.TotalRevenue)
	assert.Len(t, snapshot.RFM, 3)
}

func TestDashboardService_Snapshot_EmptyRange(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Snapshot(context.Background(), day("2018-01-05"), day("2018-01-08"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEmptyInput)
}

func TestDashboardService_Snapshot_InvalidRange(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Snapshot(context.Background(), day("2018-01-05"), day("2018-01-02"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidRange)
}

func TestDashboardService_FilteredRecords(t *testing.T) {
	svc := newTestService(t)

	records, err := svc.FilteredRecords(day("2018-01-03"), day("2018-01-10"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "B", records[0].OrderID)
	assert.Equal(t, "C", records[1].OrderID)
}
