package http

import (
	"context"
	"time"

	"orderlens/internal/services"
)

// DashboardServiceInterface defines what the handlers need from the
// dashboard service. Kept as an interface so handler tests can swap in a
// stub without loading a dataset. Every endpoint works off a full
// snapshot, so there is no per-table service surface.
type DashboardServiceInterface interface {
	Bounds() services.DateRange
	Snapshot(ctx context.Context, start, end time.Time) (*services.DashboardSnapshot, error)
}
