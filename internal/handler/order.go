package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/pedido-service/internal/order"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func parseID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var dto createOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.svc.CreateOrder(r.Context(), dto.toInput())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, toOrderDTO(o))
}

// GetOrderByID handles GET /orders/{id}.
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.svc.GetOrderByID(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderDTO(o))
}

// ListOrders handles GET /orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderDTOs(orders))
}

// SearchOrders handles GET /orders/search. Absent query parameters impose
// no constraint. Dates are plain ISO dates: startDate covers from the
// start of that day, endDate through the end of it.
func (h *OrderHandler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	var f order.Filter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := order.Status(v)
		if !status.Valid() {
			respondWithError(w, http.StatusBadRequest, "invalid status")
			return
		}
		f.Status = &status
	}
	if v := q.Get("startDate"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid startDate, expected YYYY-MM-DD")
			return
		}
		f.StartDate = &day
	}
	if v := q.Get("endDate"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid endDate, expected YYYY-MM-DD")
			return
		}
		endOfDay := day.Add(24*time.Hour - time.Nanosecond)
		f.EndDate = &endOfDay
	}
	if v := q.Get("minTotal"); v != "" {
		min, err := decimal.NewFromString(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid minTotal")
			return
		}
		f.MinTotal = &min
	}
	if v := q.Get("maxTotal"); v != "" {
		max, err := decimal.NewFromString(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid maxTotal")
			return
		}
		f.MaxTotal = &max
	}

	orders, err := h.svc.SearchOrders(r.Context(), f)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderDTOs(orders))
}

// UpdateOrder handles PUT /orders/{id}.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var dto updateOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.svc.UpdateOrder(r.Context(), id, dto.toInput())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderDTO(o))
}

// CancelOrder handles DELETE /orders/{id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.svc.CancelOrder(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderDTO(o))
}
