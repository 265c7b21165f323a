package repository

import (
	"database/sql"

	"github.com/unclebandit/storefront-backend/internal/model"
	"github.com/unclebandit/storefront-backend/internal/store/memory"
	"github.com/unclebandit/storefront-backend/internal/store/postgres"
)

const ordersTable = "orders"

var orderColumns = []string{"id", "customer_id", "total_amount", "status", "created_at"}

func NewOrderRepository(db *sql.DB) *postgres.Table[model.Order] {
	return postgres.NewTable[model.Order](db, ordersTable, orderColumns, scanOrder)
}

func NewMemoryOrderRepository() *memory.Table[model.Order] {
	return memory.NewTable[model.Order](ordersTable, memory.Default("status", model.DefaultOrderStatus))
}

func scanOrder(s postgres.Scanner) (model.Order, error) {
	var o model.Order
	err := s.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &o.Status, &o.CreatedAt)
	return o, err
}
