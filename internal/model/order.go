// internal/model/order.go
package model

import "time"

// DefaultOrderStatus is applied when an order is created without a status.
const DefaultOrderStatus = "pending"

type Order struct {
	ID          string    `db:"id" json:"id"`
	CustomerID  string    `db:"customer_id" json:"customer_id"`
	TotalAmount float64   `db:"total_amount" json:"total_amount"`
	Status      string    `db:"status" json:"status"` // free-form, no transition rules
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
