package handler

import (
	"net/http"

	domainservice "github.com/damon-houk/dca-calculator/internal/domain/service"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// RateHandler handles HTTP requests for conversion rates
type RateHandler struct {
	rates  domainservice.RateProvider
	logger logger.Logger
}

// NewRateHandler creates a new rate handler
func NewRateHandler(rates domainservice.RateProvider, log logger.Logger) *RateHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateHandler{
		rates:  rates,
		logger: log,
	}
}

// GetEURRate handles the USD to EUR rate lookup
func (h *RateHandler) GetEURRate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	rate, err := h.rates.GetLatestEURConversionRate(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, RateResponse{Base: "USD", Currency: "EUR", Rate: rate}, requestID)
}

// RegisterRoutes registers the rate handler routes
func (h *RateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/rates/eur", h.GetEURRate).Methods("GET")

	h.logger.Info("Rate routes registered", map[string]interface{}{
		"routes": []string{"GET /rates/eur"},
	})
}
