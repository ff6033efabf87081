package dataprocessing

import (
	"time"

	"orderlens/internal/errors"
	"orderlens/pkg/contracts/domain"
)

// FilterRange returns the records whose purchase date component lies in
// the inclusive interval [start, end]. The comparison is on calendar
// days: a record timestamped anywhere on the start or end day is kept.
//
// The source dataset is never mutated; the result is a fresh slice.
// Filtering an already-filtered result with the same bounds returns an
// identical set.
func FilterRange(ds *domain.Dataset, start, end time.Time) ([]domain.OrderRecord, error) {
	startDay := domain.DateOf(start)
	endDay := domain.DateOf(end)

	if startDay.After(endDay) {
		return nil, errors.NewRangeError("range start is after range end").
			WithContext("start", startDay.Format("2006-01-02")).
			WithContext("end", endDay.Format("2006-01-02"))
	}

	out := make([]domain.OrderRecord, 0, len(ds.Records))
	for _, r := range ds.Records {
		d := r.PurchaseDate()
		if d.Before(startDay) || d.After(endDay) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// FilterRecords is FilterRange over a bare record slice, used when the
// input is itself the output of a previous filter.
func FilterRecords(records []domain.OrderRecord, start, end time.Time) ([]domain.OrderRecord, error) {
	return FilterRange(&domain.Dataset{Records: records}, start, end)
}
