package domain

import (
	"time"
)

// OrderRecord represents one line item of the raw order dataset.
// An order_id is not unique across records: an order with several line
// items occupies several rows that share the same OrderID.
type OrderRecord struct {
	OrderID            string     `json:"order_id" csv:"order_id"`
	OrderItemID        int        `json:"order_item_id" csv:"order_item_id"`
	CustomerID         string     `json:"customer_id" csv:"customer_id"`
	CustomerUniqueID   string     `json:"customer_unique_id" csv:"customer_unique_id"`
	CustomerState      string     `json:"customer_state" csv:"customer_state"`
	PurchasedAt        time.Time  `json:"order_purchase_timestamp" csv:"order_purchase_timestamp"`
	DeliveredCarrierAt *time.Time `json:"order_delivered_carrier_date,omitempty" csv:"order_delivered_carrier_date"`
	Price              float64    `json:"price" csv:"price"`
	PaymentType        string     `json:"payment_type" csv:"payment_type"`
	OrderStatus        string     `json:"order_status" csv:"order_status"`
	ProductCategory    string     `json:"product_category_name_english" csv:"product_category_name_english"`
}

// PurchaseDate returns the date component of the purchase timestamp,
// truncated to midnight UTC. All range filtering and recency math works
// on date components, never raw timestamps.
func (r OrderRecord) PurchaseDate() time.Time {
	return DateOf(r.PurchasedAt)
}

// DateOf truncates a timestamp to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Dataset is the loaded order dataset. It is built once by the loader and
// read-only afterwards; every analytics cycle works on a filtered copy of
// Records, never on the slice itself.
type Dataset struct {
	Records []OrderRecord `json:"records"`

	// MinDate and MaxDate are the date-component bounds of PurchasedAt
	// across all records. They seed the default filter range and bound
	// valid filter input.
	MinDate time.Time `json:"min_date"`
	MaxDate time.Time `json:"max_date"`
}

// Len returns the number of line items in the dataset.
func (d *Dataset) Len() int {
	return len(d.Records)
}
