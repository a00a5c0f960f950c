package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/damon-houk/dca-calculator/internal/application/service"
	"github.com/damon-houk/dca-calculator/internal/domain/entity"
	domainservice "github.com/damon-houk/dca-calculator/internal/domain/service"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/logger"
)

// sendJSON writes a 200 response with a JSON body
func sendJSON(w http.ResponseWriter, log logger.Logger, body interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}

	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("Failed to encode error response", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// sendServiceError maps a service error to its HTTP status
func sendServiceError(w http.ResponseWriter, log logger.Logger, err error, requestID string) {
	switch {
	case errors.Is(err, service.ErrInvalidSimulation):
		log.Warn("Invalid simulation request", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, log, "Invalid simulation request", err.Error(), http.StatusBadRequest, requestID)
	case errors.Is(err, domainservice.ErrRateUnavailable):
		log.Error("Conversion rate unavailable", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, log, "Conversion rate unavailable",
			"Unable to retrieve the EUR conversion rate. Please try again later.",
			http.StatusServiceUnavailable, requestID)
	default:
		log.Error("Unexpected error", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, log, "Internal server error",
			"An unexpected error occurred. Please try again later.",
			http.StatusInternalServerError, requestID)
	}
}

// parseSymbol normalizes a path or query symbol to upper case and validates it
func parseSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if err := entity.ValidateSymbol(symbol); err != nil {
		return "", err
	}
	return symbol, nil
}

// parseSymbols splits a comma-separated symbol list
func parseSymbols(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("the 'symbols' query parameter is required")
	}

	var symbols []string
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		symbol, err := parseSymbol(part)
		if err != nil {
			return nil, fmt.Errorf("invalid symbol %q: %w", part, err)
		}
		symbols = append(symbols, symbol)
	}

	if len(symbols) == 0 {
		return nil, errors.New("the 'symbols' query parameter is required")
	}
	return symbols, nil
}

// parseDate parses a required YYYY-MM-DD query parameter
func parseDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("the '%s' query parameter is required", name)
	}

	date, err := time.Parse(entity.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("'%s' must be in YYYY-MM-DD format", name)
	}
	return date, nil
}

// parseRange parses the required start and end query parameters
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := parseDate(r, "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end, err := parseDate(r, "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}
