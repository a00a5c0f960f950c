// Package handler internal/infrastructure/handler/price_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/damon-houk/dca-calculator/internal/application/service"
	"github.com/damon-houk/dca-calculator/internal/domain/entity"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// PriceHandler handles HTTP requests for stored prices
type PriceHandler struct {
	service *service.PriceService
	logger  logger.Logger
}

// NewPriceHandler creates a new price handler
func NewPriceHandler(service *service.PriceService, log logger.Logger) *PriceHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &PriceHandler{
		service: service,
		logger:  log,
	}
}

// ListCryptocurrencies handles listing every known symbol with its display name
func (h *PriceHandler) ListCryptocurrencies(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	symbols, err := h.service.ListCryptocurrencies(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, CryptocurrenciesResponse{Cryptocurrencies: symbols}, requestID)
}

// GetLatestPrice handles the latest price lookup for one symbol
func (h *PriceHandler) GetLatestPrice(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	symbol, err := parseSymbol(mux.Vars(r)["symbol"])
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid symbol", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	price, found, err := h.service.LookupLatestPrice(r.Context(), symbol)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, PriceResponse{Symbol: symbol, Price: price, Found: found}, requestID)
}

// GetLatestPrices handles the latest price lookup for a comma-separated symbol list
func (h *PriceHandler) GetLatestPrices(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	symbols, err := parseSymbols(r.URL.Query().Get("symbols"))
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid symbols", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	prices, err := h.service.GetLatestPrices(r.Context(), symbols)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, LatestPricesResponse{Prices: prices}, requestID)
}

// GetHistory handles a single-day lookup (?date=) or a range lookup (?start=&end=) for one symbol
func (h *PriceHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	symbol, err := parseSymbol(mux.Vars(r)["symbol"])
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid symbol", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	if r.URL.Query().Get("date") != "" {
		h.getHistoricalPrice(w, r, symbol, requestID)
		return
	}

	start, end, err := parseRange(r)
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid date range",
			err.Error()+" (or pass 'date' for a single day)", http.StatusBadRequest, requestID)
		return
	}

	prices, err := h.service.GetHistoricalPrices(r.Context(), symbol, start, end)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, HistoryResponse{
		Symbol: symbol,
		Start:  start.Format(entity.DateLayout),
		End:    end.Format(entity.DateLayout),
		Prices: byDay(prices),
	}, requestID)
}

func (h *PriceHandler) getHistoricalPrice(w http.ResponseWriter, r *http.Request, symbol, requestID string) {
	date, err := parseDate(r, "date")
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid date format", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	price, found, err := h.service.LookupHistoricalPrice(r.Context(), symbol, date)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, PriceResponse{
		Symbol: symbol,
		Date:   date.Format(entity.DateLayout),
		Price:  price,
		Found:  found,
	}, requestID)
}

// GetMultipleHistory handles range lookups for several symbols at once
func (h *PriceHandler) GetMultipleHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	symbols, err := parseSymbols(r.URL.Query().Get("symbols"))
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid symbols", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	start, end, err := parseRange(r)
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid date range", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	grouped, err := h.service.GetMultipleHistoricalPrices(r.Context(), symbols, start, end)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	prices := make(map[string]map[string]decimal.Decimal, len(grouped))
	for symbol, days := range grouped {
		prices[symbol] = byDay(days)
	}

	sendJSON(w, h.logger, MultiHistoryResponse{
		Start:  start.Format(entity.DateLayout),
		End:    end.Format(entity.DateLayout),
		Prices: prices,
	}, requestID)
}

// GetOldestDate handles the earliest recorded day lookup
func (h *PriceHandler) GetOldestDate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	oldest, err := h.service.GetOldestDate(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	resp := OldestDateResponse{}
	if !oldest.IsZero() {
		resp.OldestDate = oldest.Format(entity.DateLayout)
	}

	sendJSON(w, h.logger, resp, requestID)
}

// RegisterRoutes registers the price handler routes
func (h *PriceHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/cryptocurrencies", h.ListCryptocurrencies).Methods("GET")
	router.HandleFunc("/prices/latest", h.GetLatestPrices).Methods("GET")
	router.HandleFunc("/prices/oldest-date", h.GetOldestDate).Methods("GET")
	router.HandleFunc("/prices/history", h.GetMultipleHistory).Methods("GET")
	router.HandleFunc("/prices/{symbol}/latest", h.GetLatestPrice).Methods("GET")
	router.HandleFunc("/prices/{symbol}/history", h.GetHistory).Methods("GET")

	h.logger.Info("Price routes registered", map[string]interface{}{
		"routes": []string{
			"GET /cryptocurrencies",
			"GET /prices/latest",
			"GET /prices/oldest-date",
			"GET /prices/history",
			"GET /prices/{symbol}/latest",
			"GET /prices/{symbol}/history",
		},
	})
}

func byDay(prices map[time.Time]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(prices))
	for day, price := range prices {
		out[day.Format(entity.DateLayout)] = price
	}
	return out
}
