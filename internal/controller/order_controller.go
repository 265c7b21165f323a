// internal/controller/order_controller.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/storefront-backend/internal/service"
)

type OrderController struct {
	OrderService *service.OrderService
}

func (c *OrderController) Routes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", c.ListOrders)
		r.Post("/", c.CreateOrder)
		r.Get("/{id}", c.GetOrder)
		r.Patch("/{id}/status", c.UpdateOrderStatus)
		r.Delete("/{id}", c.DeleteOrder)
	})
}

// ListOrders filters on ?customerId= and ?status=.
func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := c.OrderService.ListOrders(r.Context(), service.OrderFilter{
		CustomerID: q.Get("customerId"),
		Status:     q.Get("status"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := c.OrderService.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	order, err := c.OrderService.CreateOrder(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (c *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	order, err := c.OrderService.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (c *OrderController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	order, err := c.OrderService.DeleteOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "order deleted successfully",
		"deletedOrder": order,
	})
}
