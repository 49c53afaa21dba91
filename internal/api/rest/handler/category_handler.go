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

// CategoryRepository defines the category operations exposed over HTTP.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, name string) (int, error)
	Update(ctx context.Context, categoryID int, name string) (bool, error)
	Delete(ctx context.Context, categoryID int) (bool, error)
}

// CategoryHandler handles HTTP requests for product categories
type CategoryHandler struct {
	repo   CategoryRepository
	logger *slog.Logger
}

// NewCategoryHandler creates a new CategoryHandler instance
func NewCategoryHandler(repo CategoryRepository, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		repo:   repo,
		logger: logger,
	}
}

// CategoryPayload represents the request body for creating or updating a category
type CategoryPayload struct {
	Name string `json:"name"`
}

// List handles GET /categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		writeDomainError(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, categories)
}

// Create handles POST /categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload CategoryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if payload.Name == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Name is required")
		return
	}

	id, err := h.repo.Create(r.Context(), payload.Name)
	if err != nil {
		h.logger.Error("failed to create category", "name", payload.Name, "error", err)
		writeDomainError(w, err)
		return
	}

	h.logger.Info("category created", "category_id", id, "name", payload.Name)
	WriteJSONResponse(w, http.StatusCreated, map[string]int{"id_category": id})
}

// Update handles PUT /categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r)
	if !ok {
		return
	}

	var payload CategoryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if payload.Name == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Name is required")
		return
	}

	found, err := h.repo.Update(r.Context(), categoryID, payload.Name)
	if err != nil {
		h.logger.Error("failed to update category", "category_id", categoryID, "error", err)
		writeDomainError(w, err)
		return
	}
	if !found {
		writeDomainError(w, &repository.NotFoundError{
			Resource: "category", Key: "id", Value: strconv.Itoa(categoryID),
		})
		return
	}

	h.logger.Info("category updated", "category_id", categoryID)
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.repo.Delete(r.Context(), categoryID)
	if err != nil {
		h.logger.Error("failed to delete category", "category_id", categoryID, "error", err)
		writeDomainError(w, err)
		return
	}
	if !found {
		writeDomainError(w, &repository.NotFoundError{
			Resource: "category", Key: "id", Value: strconv.Itoa(categoryID),
		})
		return
	}

	h.logger.Info("category deleted", "category_id", categoryID)
	w.WriteHeader(http.StatusNoContent)
}
