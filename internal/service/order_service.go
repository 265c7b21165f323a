// internal/service/order_service.go
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

// NewOrder does not check that customer_id names an existing customer.
type NewOrder struct {
	CustomerID  string   `json:"customer_id" validate:"required"`
	TotalAmount *float64 `json:"total_amount" validate:"required,gte=0"`
	Status      string   `json:"status"`
}

type StatusChange struct {
	Status string `json:"status" validate:"required"`
}

// OrderFilter narrows ListOrders. Empty fields do not filter.
type OrderFilter struct {
	CustomerID string
	Status     string
}

type OrderService struct {
	resource[model.Order]
	validate *validatorv10.Validate
}

func NewOrderService(orders store.Collection[model.Order], events queue.Publisher) *OrderService {
	return &OrderService{
		resource: resource[model.Order]{
			table:      orders,
			entity:     "order",
			collection: "orders",
			events:     events,
		},
		validate: validation.New(),
	}
}

func (s *OrderService) ListOrders(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	where := store.Filter{}
	if f.CustomerID != "" {
		where["customer_id"] = f.CustomerID
	}
	if f.Status != "" {
		where["status"] = f.Status
	}
	return s.list(ctx, where)
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (model.Order, error) {
	return s.get(ctx, id)
}

func (s *OrderService) CreateOrder(ctx context.Context, body payload.Fields) (model.Order, error) {
	rd := body.Reader()
	var in NewOrder
	in.CustomerID, _ = rd.String("customer_id")
	in.TotalAmount, _ = rd.Number("total_amount")
	in.Status, _ = rd.String("status")

	if err := validation.Check(s.validate, in, rd.Problems()); err != nil {
		return model.Order{}, err
	}
	if in.Status == "" {
		in.Status = model.DefaultOrderStatus
	}
	return s.create(ctx, store.Values{
		"customer_id":  in.CustomerID,
		"total_amount": *in.TotalAmount,
		"status":       in.Status,
	})
}

// UpdateOrderStatus replaces status and nothing else. Any string is accepted.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, body payload.Fields) (model.Order, error) {
	rd := body.Reader()
	var in StatusChange
	in.Status, _ = rd.String("status")

	if err := validation.Check(s.validate, in, rd.Problems()); err != nil {
		return model.Order{}, err
	}
	return s.update(ctx, id, store.Values{"status": in.Status}, "status_updated")
}

func (s *OrderService) DeleteOrder(ctx context.Context, id string) (model.Order, error) {
	return s.remove(ctx, id)
}
