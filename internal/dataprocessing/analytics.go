package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"orderlens/internal/errors"
	"orderlens/pkg/contracts/domain"
)

// Analyzer derives the dashboard tables from a filtered record slice.
// Every method recomputes from scratch; results are fresh tables owned by
// the caller and never mutated afterwards.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an aggregation engine.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger.With(slog.String("component", "analyzer"))}
}

// DailyOrders aggregates records per calendar day: distinct order count
// and summed line-item revenue. Days with no orders have no row; rows are
// sorted by date ascending.
func (a *Analyzer) DailyOrders(ctx context.Context, records []domain.OrderRecord) ([]domain.DailyOrdersRow, error) {
	if len(records) == 0 {
		return nil, errors.NewEmptyInputError("no orders to aggregate by day")
	}

	type dayAgg struct {
		orders  map[string]struct{}
		revenue float64
	}
	days := make(map[int64]*dayAgg)

	for _, r := range records {
		key := r.PurchaseDate().Unix()
		agg, ok := days[key]
		if !ok {
			agg = &dayAgg{orders: make(map[string]struct{})}
			days[key] = agg
		}
		agg.orders[r.OrderID] = struct{}{}
		agg.revenue += r.Price
	}

	rows := make([]domain.DailyOrdersRow, 0, len(days))
	for key, agg := range days {
		rows = append(rows, domain.DailyOrdersRow{
			Date:       time.Unix(key, 0).UTC(),
			OrderCount: len(agg.orders),
			Revenue:    agg.revenue,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	a.logger.DebugContext(ctx, "daily orders computed",
		slog.Int("days", len(rows)),
		slog.Int("records", len(records)))

	return rows, nil
}

// CategorySales counts line items per product category over the filtered
// subset. Rows are sorted by item count descending; equal counts fall
// back to category name ascending so chart output is deterministic.
func (a *Analyzer) CategorySales(ctx context.Context, records []domain.OrderRecord) ([]domain.CategorySales, error) {
	if len(records) == 0 {
		return nil, errors.NewEmptyInputError("no orders to aggregate by category")
	}

	counts := make(map[string]int)
	for _, r := range records {
		counts[r.ProductCategory]++
	}

	rows := make([]domain.CategorySales, 0, len(counts))
	for category, items := range counts {
		rows = append(rows, domain.CategorySales{Category: category, Items: items})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Items != rows[j].Items {
			return rows[i].Items > rows[j].Items
		}
		return rows[i].Category < rows[j].Category
	})

	a.logger.DebugContext(ctx, "category sales computed",
		slog.Int("categories", len(rows)),
		slog.Int("records", len(records)))

	return rows, nil
}

// RFM computes the recency/frequency/monetary table, one row per distinct
// customer_id. Recency is measured in whole days from the customer's last
// purchase date to the latest purchase date of the entire filtered set,
// so it is non-negative by construction.
func (a *Analyzer) RFM(ctx context.Context, records []domain.OrderRecord) ([]domain.RFMRow, error) {
	if len(records) == 0 {
		return nil, errors.NewEmptyInputError("no orders for RFM segmentation")
	}

	type custAgg struct {
		orders   map[string]struct{}
		monetary float64
		lastDate int64
	}
	customers := make(map[string]*custAgg)
	var referenceDate int64

	for _, r := range records {
		day := r.PurchaseDate().Unix()
		if day > referenceDate {
			referenceDate = day
		}

		agg, ok := customers[r.CustomerID]
		if !ok {
			agg = &custAgg{orders: make(map[string]struct{})}
			customers[r.CustomerID] = agg
		}
		agg.orders[r.OrderID] = struct{}{}
		agg.monetary += r.Price
		if day > agg.lastDate {
			agg.lastDate = day
		}
	}

	rows := make([]domain.RFMRow, 0, len(customers))
	for id, agg := range customers {
		recency := int((referenceDate - agg.lastDate) / (24 * 60 * 60))
		if recency < 0 {
			// Unreachable given referenceDate is the global maximum.
			return nil, fmt.Errorf("negative recency for customer %s", id)
		}
		rows = append(rows, domain.RFMRow{
			CustomerID: id,
			Frequency:  len(agg.orders),
			Monetary:   agg.monetary,
			Recency:    recency,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CustomerID < rows[j].CustomerID
	})

	a.logger.DebugContext(ctx, "rfm table computed",
		slog.Int("customers", len(rows)),
		slog.Int("records", len(records)))

	return rows, nil
}

// CustomerBreakdown counts distinct customers per value of the given
// dimension. State uses customer_id; payment type and order status use
// customer_unique_id, which identifies a person across repeat customer
// IDs. Rows are sorted by customer count descending, ties by key.
func (a *Analyzer) CustomerBreakdown(ctx context.Context, records []domain.OrderRecord, dim domain.BreakdownDimension) ([]domain.CustomerBreakdownRow, error) {
	if len(records) == 0 {
		return nil, errors.NewEmptyInputError("no orders to aggregate by " + string(dim))
	}

	groups := make(map[string]map[string]struct{})
	for _, r := range records {
		var key, customer string
		switch dim {
		case domain.ByState:
			key, customer = r.CustomerState, r.CustomerID
		case domain.ByPayment:
			key, customer = r.PaymentType, r.CustomerUniqueID
		case domain.ByStatus:
			key, customer = r.OrderStatus, r.CustomerUniqueID
		default:
			return nil, errors.NewAppValidationError("unknown breakdown dimension: " + string(dim))
		}

		set, ok := groups[key]
		if !ok {
			set = make(map[string]struct{})
			groups[key] = set
		}
		set[customer] = struct{}{}
	}

	rows := make([]domain.CustomerBreakdownRow, 0, len(groups))
	for key, set := range groups {
		rows = append(rows, domain.CustomerBreakdownRow{Key: key, Customers: len(set)})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Customers != rows[j].Customers {
			return rows[i].Customers > rows[j].Customers
		}
		return rows[i].Key < rows[j].Key
	})

	a.logger.DebugContext(ctx, "customer breakdown computed",
		slog.String("dimension", string(dim)),
		slog.Int("groups", len(rows)))

	return rows, nil
}

// CustomersByState counts distinct customer_id per customer_state.
func (a *Analyzer) CustomersByState(ctx context.Context, records []domain.OrderRecord) ([]domain.CustomerBreakdownRow, error) {
	return a.CustomerBreakdown(ctx, records, domain.ByState)
}

// CustomersByPayment counts distinct customer_unique_id per payment_type.
func (a *Analyzer) CustomersByPayment(ctx context.Context, records []domain.OrderRecord) ([]domain.CustomerBreakdownRow, error) {
	return a.CustomerBreakdown(ctx, records, domain.ByPayment)
}

// CustomersByStatus counts distinct customer_unique_id per order_status.
func (a *Analyzer) CustomersByStatus(ctx context.Context, records []domain.OrderRecord) ([]domain.CustomerBreakdownRow, error) {
	return a.CustomerBreakdown(ctx, records, domain.ByStatus)
}

// RFMAverages computes the mean of each RFM component.
func (a *Analyzer) RFMAverages(rows []domain.RFMRow) (domain.RFMAverages, error) {
	if len(rows) == 0 {
		// Averaging zero customers would misrepresent the data as 0.
		return domain.RFMAverages{}, errors.NewEmptyInputError("no customers to average")
	}

	var avg domain.RFMAverages
	for _, row := range rows {
		avg.Recency += float64(row.Recency)
		avg.Frequency += float64(row.Frequency)
		avg.Monetary += row.Monetary
	}
	n := float64(len(rows))
	avg.Recency /= n
	avg.Frequency /= n
	avg.Monetary /= n
	return avg, nil
}
