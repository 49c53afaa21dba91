package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akowalczyk/backoffice/internal/repository"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSONResponse writes a JSON response with the given status code and data
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes an error response with the given status code and message
func WriteErrorResponse(w http.ResponseWriter, statusCode int, err, message string) {
	response := ErrorResponse{
		Error:   err,
		Message: message,
	}
	WriteJSONResponse(w, statusCode, response)
}

// writeDomainError maps service and repository failures to transport
// responses. Validation reasons and not-found messages are safe to return;
// everything else becomes a generic problem description.
func writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *repository.ValidationError
	if errors.As(err, &validationErr) {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", validationErr.Reason)
		return
	}

	var notFoundErr *repository.NotFoundError
	if errors.As(err, &notFoundErr) {
		WriteErrorResponse(w, http.StatusNotFound, "not_found", notFoundErr.Error())
		return
	}

	WriteErrorResponse(
		w,
		http.StatusInternalServerError,
		"internal_error",
		"An internal error occurred while processing your request",
	)
}
