package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/akowalczyk/backoffice/internal/domain"
	"github.com/akowalczyk/backoffice/internal/repository"
)

// ProductRepository defines the catalog operations exposed over HTTP.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (int, error)
	Update(ctx context.Context, productID int, product *domain.Product) (bool, error)
	Delete(ctx context.Context, productID int) (bool, error)
}

// ProductHandler handles HTTP requests for catalog products
type ProductHandler struct {
	repo   ProductRepository
	logger *slog.Logger
}

// NewProductHandler creates a new ProductHandler instance
func NewProductHandler(repo ProductRepository, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		repo:   repo,
		logger: logger,
	}
}

// ProductPayload represents the request body for creating or updating a product
type ProductPayload struct {
	Name        string  `json:"name"`
	Cost        float64 `json:"cost"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Supplier    string  `json:"supplier"`
}

func (p *ProductPayload) toDomain() *domain.Product {
	return &domain.Product{
		Name:        p.Name,
		Cost:        p.Cost,
		Description: p.Description,
		Category:    p.Category,
		Supplier:    p.Supplier,
	}
}

func (p *ProductPayload) validate() string {
	switch {
	case p.Name == "":
		return "Name is required"
	case p.Cost < 0:
		return "Cost must not be negative"
	case p.Category == "":
		return "Category is required"
	case p.Supplier == "":
		return "Supplier is required"
	}
	return ""
}

// List handles GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.GetAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		writeDomainError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, products)
}

// Create handles POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload ProductPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if msg := payload.validate(); msg != "" {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	id, err := h.repo.Create(r.Context(), payload.toDomain())
	if err != nil {
		h.logger.Error("failed to create product", "name", payload.Name, "error", err)
		writeDomainError(w, err)
		return
	}

	h.logger.Info("product created", "product_id", id, "name", payload.Name)
	WriteJSONResponse(w, http.StatusCreated, map[string]int{"id_product": id})
}

// Update handles PUT /products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
		return
	}

	var payload ProductPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if msg := payload.validate(); msg != "" {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	found, err := h.repo.Update(r.Context(), productID, payload.toDomain())
	if err != nil {
		h.logger.Error("failed to update product", "product_id", productID, "error", err)
		writeDomainError(w, err)
		return
	}
	if !found {
		writeDomainError(w, &repository.NotFoundError{
			Resource: "product", Key: "id", Value: strconv.Itoa(productID),
		})
		return
	}

	h.logger.Info("product updated", "product_id", productID)
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.repo.Delete(r.Context(), productID)
	if err != nil {
		h.logger.Error("failed to delete product", "product_id", productID, "error", err)
		writeDomainError(w, err)
		return
	}
	if !found {
		writeDomainError(w, &repository.NotFoundError{
			Resource: "product", Key: "id", Value: strconv.Itoa(productID),
		})
		return
	}

	h.logger.Info("product deleted", "product_id", productID)
	w.WriteHeader(http.StatusNoContent)
}
