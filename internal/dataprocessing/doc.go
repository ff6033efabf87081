// Package dataprocessing holds the analytics core: the dataset loader,
// the date-range filter and the aggregation engine that derives the
// dashboard tables (daily orders, category sales, customer breakdowns,
// RFM segmentation) from the raw order line items.
//
// The whole package is a pure function from (dataset, date range) to a
// bundle of derived tables. Nothing here keeps state across calls; every
// recomputation starts from the filtered record slice and produces fresh
// tables.
package dataprocessing
