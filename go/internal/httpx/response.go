// Package httpx holds the JSON response helpers shared by the API handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grouptick/grouptick/go/internal/apperr"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON sends a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// FromError maps an application error onto the HTTP status and code for its
// place in the taxonomy.
func FromError(w http.ResponseWriter, err error) {
	var v *apperr.ValidationError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		Error(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		Error(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, apperr.ErrConflict):
		Error(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.As(err, &v):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(APIResponse{
			Success: false,
			Error: &APIError{
				Code:    "VALIDATION",
				Message: v.Error(),
				Fields:  v.FieldErrors,
			},
		})
	default:
		Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

// BadRequest sends a 400 for malformed request bodies
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

// Unauthorized sends a 401 for requests with no caller identity
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}
