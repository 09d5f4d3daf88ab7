// Package handlers serves the knowledge graph over JSON.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"go.uber.org/zap"
)

// ListResponse wraps collection results
type ListResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}

// MessageResponse is returned by endpoints without a resource body
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// respondJSON writes v with the given status
func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondText writes a pre-rendered body
func respondText(w http.ResponseWriter, logger *zap.Logger, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}

// decodeJSON reads the request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return pkgerrors.NewValidationError("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return pkgerrors.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.NewValidationError(fmt.Sprintf("%s must be an integer", key))
	}
	return v, nil
}

// queryFloat parses an optional float query parameter
func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, pkgerrors.NewValidationError(fmt.Sprintf("%s must be a number", key))
	}
	return v, nil
}
