// Package order defines the order shapes consumed by zone matching and
// dispatch. Orders are owned by the backend; this terminal only reads them.
package order

import "time"

// Item is a single order line item.
type Item struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ProductID     string `json:"product_id"`
	CategoryID    string `json:"category_id"`
	ProductTypeID string `json:"product_type_id,omitempty"`
	Quantity      int    `json:"quantity"`
	Notes         string `json:"notes,omitempty"`
}

// Order is a completed order ready for ticket dispatch.
type Order struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	Items       []Item    `json:"items"`
	TableName   string    `json:"table_name,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
