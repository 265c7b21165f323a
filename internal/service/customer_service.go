// internal/service/customer_service.go
package service

import (
	"context"

	validatorv10 "github.com/go-playground/validator/v10"

	appErrors "github.com/unclebandit/storefront-backend/internal/errors"
	"github.com/unclebandit/storefront-backend/internal/model"
	"github.com/unclebandit/storefront-backend/internal/payload"
	"github.com/unclebandit/storefront-backend/internal/queue"
	"github.com/unclebandit/storefront-backend/internal/store"
	"github.com/unclebandit/storefront-backend/internal/validation"
)

// NewCustomer is the validated shape of a create request.
type NewCustomer struct {
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required"`
	Address *string `json:"address"`
}

type CustomerService struct {
	resource[model.Customer]
	validate *validatorv10.Validate
}

// NewCustomerService wires the customers collection. events may be nil.
func NewCustomerService(customers store.Collection[model.Customer], events queue.Publisher) *CustomerService {
	return &CustomerService{
		resource: resource[model.Customer]{
			table:      customers,
			entity:     "customer",
			collection: "customers",
			events:     events,
		},
		validate: validation.New(),
	}
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.list(ctx, nil)
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (model.Customer, error) {
	return s.get(ctx, id)
}

func (s *CustomerService) CreateCustomer(ctx context.Context, body payload.Fields) (model.Customer, error) {
	rd := body.Reader()
	var in NewCustomer
	in.Name, _ = rd.String("name")
	in.Email, _ = rd.String("email")
	in.Address, _ = rd.NullableString("address")

	if err := validation.Check(s.validate, in, rd.Problems()); err != nil {
		return model.Customer{}, err
	}
	return s.create(ctx, store.Values{
		"name":    in.Name,
		"email":   in.Email,
		"address": in.Address,
	})
}

// UpdateCustomer writes only the fields present in body. A sent null address
// clears it.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, body payload.Fields) (model.Customer, error) {
	rd := body.Reader()
	values := store.Values{}
	problems := rd.Problems()

	for _, field := range []string{"name", "email"} {
		v, ok := rd.String(field)
		if !ok {
			continue
		}
		if v == "" {
			if _, bad := problems[field]; !bad {
				problems[field] = "must not be empty"
			}
			continue
		}
		values[field] = v
	}
	if addr, ok := rd.NullableString("address"); ok {
		values["address"] = addr
	}

	if len(problems) > 0 {
		return model.Customer{}, appErrors.NewValidation(validation.Summary(problems), problems)
	}
	return s.update(ctx, id, values, "updated")
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) (model.Customer, error) {
	return s.remove(ctx, id)
}
