package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/pedido-service/internal/product"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	svc product.Service
}

func NewProductHandler(svc product.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// CreateProduct handles POST /products.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var dto createProductDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.CreateProduct(r.Context(), &product.Product{
		Description:   dto.Description,
		Price:         dto.Price,
		Category:      dto.Category,
		QuantityStock: dto.QuantityStock,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, toProductDTO(p))
}

// GetProductByID handles GET /products/{id}.
func (h *ProductHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.svc.GetProductByID(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toProductDTO(p))
}

// ListProducts handles GET /products.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toProductDTOs(products))
}

// SearchProducts handles GET /products/search. Absent query parameters
// impose no constraint.
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	var f product.Filter
	q := r.URL.Query()

	if v := q.Get("description"); v != "" {
		f.Description = &v
	}
	if v := q.Get("category"); v != "" {
		f.Category = &v
	}
	if v := q.Get("minPrice"); v != "" {
		min, err := decimal.NewFromString(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid minPrice")
			return
		}
		f.MinPrice = &min
	}
	if v := q.Get("maxPrice"); v != "" {
		max, err := decimal.NewFromString(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid maxPrice")
			return
		}
		f.MaxPrice = &max
	}

	products, err := h.svc.SearchProducts(r.Context(), f)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toProductDTOs(products))
}

// UpdateProduct handles PUT /products/{id}.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var dto updateProductDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := product.StatusActive
	if dto.Disabled {
		status = product.StatusDisabled
	}

	p, err := h.svc.UpdateProduct(r.Context(), id, &product.Product{
		Description:   dto.Description,
		Price:         dto.Price,
		Category:      dto.Category,
		QuantityStock: dto.QuantityStock,
		Status:        status,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toProductDTO(p))
}

// DeleteProduct handles DELETE /products/{id}. Deletion is a soft delete:
// the product is disabled, never removed.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.svc.DisableProduct(r.Context(), id); err != nil {
		respondWithDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
