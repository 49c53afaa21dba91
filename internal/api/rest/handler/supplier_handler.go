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

// SupplierRepository defines the supplier operations exposed over HTTP.
type SupplierRepository interface {
	GetAll(ctx context.Context) ([]domain.Supplier, error)
	Create(ctx context.Context, supplier *domain.Supplier) (int, error)
	Update(ctx context.Context, supplierID int, supplier *domain.Supplier) (bool, error)
	Delete(ctx context.Context, supplierID int) (bool, error)
}

// SupplierHandler handles HTTP requests for suppliers
type SupplierHandler struct {
	repo   SupplierRepository
	logger *slog.Logger
}

// NewSupplierHandler creates a new SupplierHandler instance
func NewSupplierHandler(repo SupplierRepository, logger *slog.Logger) *SupplierHandler {
	return &SupplierHandler{
		repo:   repo,
		logger: logger,
	}
}

// SupplierPayload represents the request body for creating or updating a supplier
type SupplierPayload struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (p *SupplierPayload) toDomain() *domain.Supplier {
	return &domain.Supplier{
		Name:    p.Name,
		Address: p.Address,
		Phone:   p.Phone,
	}
}

// List handles GET /suppliers
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.repo.GetAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list suppliers", "error", err)
		writeDomainError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, suppliers)
}

// Create handles POST /suppliers
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload SupplierPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if payload.Name == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Name is required")
		return
	}

	id, err := h.repo.Create(r.Context(), payload.toDomain())
	if err != nil {
		h.logger.Error("failed to create supplier", "name", payload.Name, "error", err)
		writeDomainError(w, err)
		return
	}

	h.logger.Info("supplier created", "supplier_id", id, "name", payload.Name)
	WriteJSONResponse(w, http.StatusCreated, map[string]int{"id_supplier": id})
}

// Update handles PUT /suppliers/{id}
func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := pathID(w, r)
	if !ok {
		return
	}

	var payload SupplierPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if payload.Name == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Name is required")
		return
	}

	found, err := h.repo.Update(r.Context(), supplierID, payload.toDomain())
	if err != nil {
		h.logger.Error("failed to update supplier", "supplier_id", supplierID, "error", err)
		writeDomainError(w, err)
		return
	}
	if !found {
		writeDomainError(w, &repository.NotFoundError{
			Resource: "supplier", Key: "id", Value: strconv.Itoa(supplierID),
		})
		return
	}

	h.logger.Info("supplier updated", "supplier_id", supplierID)
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /suppliers/{id}
func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.repo.Delete(r.Context(), supplierID)
	if err != nil {
		h.logger.Error("failed to delete supplier", "supplier_id", supplierID, "error", err)
		writeDomainError(w, err)
		return
	}
	if !found {
		writeDomainError(w, &repository.NotFoundError{
			Resource: "supplier", Key: "id", Value: strconv.Itoa(supplierID),
		})
		return
	}

	h.logger.Info("supplier deleted", "supplier_id", supplierID)
	w.WriteHeader(http.StatusNoContent)
}
