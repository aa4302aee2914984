package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status of its category. Details of
// unexpected errors stay out of the response.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := mapDomainError(err)
	details := err.Error()
	if status == http.StatusInternalServerError {
		details = ""
	}
	writeError(w, status, message, details)
}

// mapDomainError maps domain error categories to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes and validates a JSON request body. It writes the 400
// response itself and reports whether the handler may continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := dto.Validate(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return false
	}
	return true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parsePage reads limit and offset. Range checks happen in the domain.
func parsePage(r *http.Request) (limit, offset int) {
	return parseIntQuery(r, "limit", domain.DefaultPageSize), parseIntQuery(r, "offset", 0)
}

// parseAmountQuery parses an optional minor-unit amount.
func parseAmountQuery(r *http.Request, key string) (*int64, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidArgument, key)
	}
	return &v, nil
}

// parseTimeQuery parses an optional RFC 3339 timestamp.
func parseTimeQuery(r *http.Request, key string) (*time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, nil
	}
	v, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp", domain.ErrInvalidArgument, key)
	}
	return &v, nil
}

func sortOrder(r *http.Request) domain.SortOrder {
	return domain.SortOrder(r.URL.Query().Get("order"))
}
