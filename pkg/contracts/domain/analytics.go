package domain

import (
	"time"
)

// DailyOrdersRow is one calendar day of order activity. OrderCount counts
// distinct order IDs purchased that day; Revenue sums the price of every
// line item purchased that day. Days without orders have no row.
type DailyOrdersRow struct {
	Date       time.Time `json:"date"`
	OrderCount int       `json:"order_count"`
	Revenue    float64   `json:"revenue"`
}

// CategorySales is the line-item count for one product category. Two line
// items of the same order and category contribute 2, not 1.
type CategorySales struct {
	Category string `json:"category"`
	Items    int    `json:"items"`
}

// RFMRow is the recency/frequency/monetary segmentation for one customer.
// Recency is the whole-day distance from the customer's latest purchase
// date to the latest purchase date in the filtered set, so it is never
// negative.
type RFMRow struct {
	CustomerID string  `json:"customer_id"`
	Frequency  int     `json:"frequency"`
	Monetary   float64 `json:"monetary"`
	Recency    int     `json:"recency"`
}

// CustomerBreakdownRow is a distinct-customer count for one value of a
// grouping dimension (state, payment type or order status).
type CustomerBreakdownRow struct {
	Key       string `json:"key"`
	Customers int    `json:"customers"`
}

// BreakdownDimension identifies a customer grouping dimension.
type BreakdownDimension string

const (
	// ByState groups distinct customer_id per customer_state.
	ByState BreakdownDimension = "state"
	// ByPayment groups distinct customer_unique_id per payment_type.
	ByPayment BreakdownDimension = "payment"
	// ByStatus groups distinct customer_unique_id per order_status.
	ByStatus BreakdownDimension = "status"
)

// RFMAverages holds the mean of each RFM component over all customers in
// a filtered set. Monetary stays a raw decimal; currency formatting is a
// presentation concern.
type RFMAverages struct {
	Recency   float64 `json:"recency"`
	Frequency float64 `json:"frequency"`
	Monetary  float64 `json:"monetary"`
}
