// internal/service/product_service.go
package service

import (
	"context"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/unclebandit/storefront-backend/internal/model"
	"github.com/unclebandit/storefront-backend/internal/payload"
	"github.com/unclebandit/storefront-backend/internal/queue"
	"github.com/unclebandit/storefront-backend/internal/store"
	"github.com/unclebandit/storefront-backend/internal/validation"
)

type NewProduct struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
}

// ProductPatch holds the numeric fields of an update that were sent.
type ProductPatch struct {
	Price *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock *int     `json:"stock" validate:"omitempty,gte=0"`
}

type ProductService struct {
	resource[model.Product]
	validate *validatorv10.Validate
}

func NewProductService(products store.Collection[model.Product], events queue.Publisher) *ProductService {
	return &ProductService{
		resource: resource[model.Product]{
			table:      products,
			entity:     "product",
			collection: "products",
			events:     events,
		},
		validate: validation.New(),
	}
}

func (s *ProductService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.list(ctx, nil)
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (model.Product, error) {
	return s.get(ctx, id)
}

// CreateProduct requires name and price. Stock defaults to 0 when absent or null.
func (s *ProductService) CreateProduct(ctx context.Context, body payload.Fields) (model.Product, error) {
	rd := body.Reader()
	var in NewProduct
	in.Name, _ = rd.String("name")
	in.Description, _ = rd.NullableString("description")
	in.Price, _ = rd.Number("price")
	if stock, _ := rd.Integer("stock"); stock != nil {
		in.Stock = *stock
	}

	if err := validation.Check(s.validate, in, rd.Problems()); err != nil {
		return model.Product{}, err
	}
	return s.create(ctx, store.Values{
		"name":        in.Name,
		"description": in.Description,
		"price":       *in.Price,
		"stock":       in.Stock,
	})
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, body payload.Fields) (model.Product, error) {
	rd := body.Reader()
	values := store.Values{}
	problems := rd.Problems()

	if name, ok := rd.String("name"); ok {
		if name == "" {
			if _, bad := problems["name"]; !bad {
				problems["name"] = "must not be empty"
			}
		} else {
			values["name"] = name
		}
	}
	if desc, ok := rd.NullableString("description"); ok {
		values["description"] = desc
	}

	var patch ProductPatch
	var sent bool
	if patch.Price, sent = rd.Number("price"); sent {
		if patch.Price == nil {
			nonNull(problems, "price")
		} else {
			values["price"] = *patch.Price
		}
	}
	if patch.Stock, sent = rd.Integer("stock"); sent {
		if patch.Stock == nil {
			nonNull(problems, "stock")
		} else {
			values["stock"] = *patch.Stock
		}
	}

	if err := validation.Check(s.validate, patch, problems); err != nil {
		return model.Product{}, err
	}
	return s.update(ctx, id, values, "updated")
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) (model.Product, error) {
	return s.remove(ctx, id)
}

// nonNull records a sent null on a column that has no null state.
func nonNull(problems map[string]string, field string) {
	if _, bad := problems[field]; !bad {
		problems[field] = "must be a non-negative number"
	}
}
