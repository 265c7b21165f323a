// internal/controller/product_controller.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/storefront-backend/internal/service"
)

type ProductController struct {
	ProductService *service.ProductService
}

func (c *ProductController) Routes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", c.ListProducts)
		r.Post("/", c.CreateProduct)
		r.Get("/{id}", c.GetProduct)
		r.Put("/{id}", c.UpdateProduct)
		r.Delete("/{id}", c.DeleteProduct)
	})
}

func (c *ProductController) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := c.ProductService.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (c *ProductController) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := c.ProductService.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (c *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	product, err := c.ProductService.CreateProduct(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (c *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	product, err := c.ProductService.UpdateProduct(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (c *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	product, err := c.ProductService.DeleteProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "product deleted successfully",
		"deletedProduct": product,
	})
}
