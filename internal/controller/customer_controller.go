// internal/controller/customer_controller.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/storefront-backend/internal/service"
)

type CustomerController struct {
	CustomerService *service.CustomerService
}

func (c *CustomerController) Routes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", c.ListCustomers)
		r.Post("/", c.CreateCustomer)
		r.Get("/{id}", c.GetCustomer)
		r.Put("/{id}", c.UpdateCustomer)
		r.Delete("/{id}", c.DeleteCustomer)
	})
}

func (c *CustomerController) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := c.CustomerService.ListCustomers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (c *CustomerController) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := c.CustomerService.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (c *CustomerController) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	customer, err := c.CustomerService.CreateCustomer(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (c *CustomerController) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	customer, err := c.CustomerService.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (c *CustomerController) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := c.CustomerService.DeleteCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "customer deleted successfully",
		"deletedCustomer": customer,
	})
}
