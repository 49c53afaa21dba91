package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/akowalczyk/backoffice/internal/domain"
)

// OrderService defines the order operations exposed over HTTP.
type OrderService interface {
	Create(ctx context.Context, order *domain.Order) (int, error)
	Get(ctx context.Context, orderID int) (*domain.Order, error)
	List(ctx context.Context, sortColumn, direction string) ([]domain.Order, error)
	Update(ctx context.Context, orderID int, order *domain.Order) error
	Delete(ctx context.Context, orderID int) error
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	svc    OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new OrderHandler instance
func NewOrderHandler(svc OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		svc:    svc,
		logger: logger,
	}
}

// LineItemPayload represents one line item in an order request
type LineItemPayload struct {
	ProductID int `json:"id_product"`
	Quantity  int `json:"quantity"`
}

// OrderPayload represents the request body for creating or updating an order
type OrderPayload struct {
	FirstName  string            `json:"firstname"`
	LastName   string            `json:"lastname"`
	City       string            `json:"city"`
	Country    string            `json:"country"`
	Address    string            `json:"address"`
	PostalCode string            `json:"postalcode"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	Items      []LineItemPayload `json:"products"`
}

// CreateOrderResponse represents the response for creating an order
type CreateOrderResponse struct {
	ID int `json:"id_order"`
}

func (p *OrderPayload) toDomain() *domain.Order {
	items := make([]domain.LineItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, domain.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return &domain.Order{
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		City:       p.City,
		Country:    p.Country,
		Address:    p.Address,
		PostalCode: p.PostalCode,
		Email:      p.Email,
		Phone:      p.Phone,
		Items:      items,
	}
}

// List handles GET /orders and GET /orders/{column}/{direction}
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	orders, err := h.svc.List(r.Context(), vars["column"], vars["direction"])
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, orders)
}

// Get handles GET /orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := h.svc.Get(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, order)
}

// Create handles POST /orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload OrderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	id, err := h.svc.Create(r.Context(), payload.toDomain())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusCreated, CreateOrderResponse{ID: id})
}

// Update handles PUT /orders/{id}
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}

	var payload OrderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if err := h.svc.Update(r.Context(), orderID, payload.toDomain()); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /orders/{id}
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), orderID); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID reads the {id} path variable, responding with 400 when it is not a
// positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "ID must be a positive integer")
		return 0, false
	}
	return id, true
}
