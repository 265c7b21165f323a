package repository

import (
	"database/sql"

	"github.com/unclebandit/storefront-backend/internal/model"
	"github.com/unclebandit/storefront-backend/internal/store/memory"
	"github.com/unclebandit/storefront-backend/internal/store/postgres"
)

const customersTable = "customers"

// customerColumns is the select list and scan order for customers.
var customerColumns = []string{"id", "name", "email", "address", "created_at"}

// NewCustomerRepository binds the customers table in Postgres.
func NewCustomerRepository(db *sql.DB) *postgres.Table[model.Customer] {
	return postgres.NewTable[model.Customer](db, customersTable, customerColumns, scanCustomer)
}

// NewMemoryCustomerRepository keeps customers in process, with the same
// unique email rule the database enforces.
func NewMemoryCustomerRepository() *memory.Table[model.Customer] {
	return memory.NewTable[model.Customer](customersTable, memory.Unique("email"))
}

func scanCustomer(s postgres.Scanner) (model.Customer, error) {
	var c model.Customer
	var address sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &address, &c.CreatedAt); err != nil {
		return c, err
	}
	c.Address = nullString(address)
	return c, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
