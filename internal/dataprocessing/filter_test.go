package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderlens/internal/errors"
	"orderlens/pkg/contracts/domain"
)

func fixtureDataset() *domain.Dataset {
	records := []domain.OrderRecord{
		{OrderID: "1", CustomerID: "C1", PurchasedAt: mustTime("2018-01-01 00:00:00"), Price: 10},
		{OrderID: "2", CustomerID: "C2", PurchasedAt: mustTime("2018-01-02 09:30:00"), Price: 20},
		{OrderID: "3", CustomerID: "C3", PurchasedAt: mustTime("2018-01-03 23:59:59"), Price: 30},
		{OrderID: "4", CustomerID: "C4", PurchasedAt: mustTime("2018-01-05 12:00:00"), Price: 40},
	}
	return &domain.Dataset{
		Records: records,
		MinDate: day("2018-01-01"),
		MaxDate: day("2018-01-05"),
	}
}

func mustTime(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFilterRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		wantOrders []string
	}{
		{
			name:       "full range keeps everything",
			start:      day("2018-01-01"),
			end:        day("2018-01-05"),
			wantOrders: []string{"1", "2", "3", "4"},
		},
		{
			name:       "bounds are inclusive on both ends",
			start:      day("2018-01-02"),
			end:        day("2018-01-03"),
			wantOrders: []string{"2", "3"},
		},
		{
			name:       "end-day timestamp late in the day is kept",
			start:      day("2018-01-03"),
			end:        day("2018-01-03"),
			wantOrders: []string{"3"},
		},
		{
			name:       "single day equals start and end",
			start:      day("2018-01-01"),
			end:        day("2018-01-01"),
			wantOrders: []string{"1"},
		},
		{
			name:       "range with no orders is empty, not an error",
			start:      day("2018-01-04"),
			end:        day("2018-01-04"),
			wantOrders: []string{},
		},
		{
			name:       "intraday bounds are truncated to whole days",
			start:      mustTime("2018-01-02 18:00:00"),
			end:        mustTime("2018-01-02 06:00:00"),
			wantOrders: []string{"2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := FilterRange(fixtureDataset(), tt.start, tt.end)
			require.NoError(t, err)

			got := make([]string, 0, len(out))
			for _, r := range out {
				got = append(got, r.OrderID)
			}
			assert.Equal(t, tt.wantOrders, got)
		})
	}
}

func TestFilterRange_StartAfterEnd(t *testing.T) {
	_, err := FilterRange(fixtureDataset(), day("2018-01-03"), day("2018-01-01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidRange)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrTypeValidation, appErr.Type)
	assert.Equal(t, "2018-01-03", appErr.Context["start"])
	assert.Equal(t, "2018-01-01", appErr.Context["end"])
}

func TestFilterRange_DoesNotMutateSource(t *testing.T) {
	ds := fixtureDataset()
	before := len(ds.Records)

	out, err := FilterRange(ds, day("2018-01-02"), day("2018-01-03"))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Len(t, ds.Records, before)
	assert.Equal(t, "1", ds.Records[0].OrderID)
}

func TestFilterRecords_IsIdempotent(t *testing.T) {
	ds := fixtureDataset()
	start, end := day("2018-01-01"), day("2018-01-03")

	once, err := FilterRange(ds, start, end)
	require.NoError(t, err)

	twice, err := FilterRecords(once, start, end)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}
