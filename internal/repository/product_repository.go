package repository

import (
	"database/sql"

	"github.com/unclebandit/storefront-backend/internal/model"
	"github.com/unclebandit/storefront-backend/internal/store/memory"
	"github.com/unclebandit/storefront-backend/internal/store/postgres"
)

const productsTable = "products"

var productColumns = []string{"id", "name", "description", "price", "stock", "created_at"}

func NewProductRepository(db *sql.DB) *postgres.Table[model.Product] {
	return postgres.NewTable[model.Product](db, productsTable, productColumns, scanProduct)
}

func NewMemoryProductRepository() *memory.Table[model.Product] {
	return memory.NewTable[model.Product](productsTable, memory.Default("stock", 0))
}

func scanProduct(s postgres.Scanner) (model.Product, error) {
	var p model.Product
	var description sql.NullString
	if err := s.Scan(&p.ID, &p.Name, &description, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
		return p, err
	}
	p.Description = nullString(description)
	return p, nil
}
