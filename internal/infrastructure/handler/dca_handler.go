package handler

import (
	"net/http"
	"strings"

	"github.com/damon-houk/dca-calculator/internal/application/service"
	"github.com/damon-houk/dca-calculator/internal/domain/entity"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// dcaQuery holds the raw query parameters of a simulation request
type dcaQuery struct {
	Amount   string `validate:"required,numeric"`
	Start    string `validate:"required,datetime=2006-01-02"`
	End      string `validate:"required,datetime=2006-01-02"`
	Interval string `validate:"omitempty,oneof=daily weekly monthly"`
}

// DCAHandler handles HTTP requests for DCA simulations
type DCAHandler struct {
	service  *service.DCAService
	validate *validator.Validate
	logger   logger.Logger
}

// NewDCAHandler creates a new DCA handler
func NewDCAHandler(service *service.DCAService, log logger.Logger) *DCAHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &DCAHandler{
		service:  service,
		validate: validator.New(),
		logger:   log,
	}
}

// Simulate handles GET /dca/{symbol}?amount=..&start=..&end=..&interval=..
func (h *DCAHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	symbol, err := parseSymbol(mux.Vars(r)["symbol"])
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid symbol", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	params := dcaQuery{
		Amount:   query.Get("amount"),
		Start:    query.Get("start"),
		End:      query.Get("end"),
		Interval: strings.ToLower(strings.TrimSpace(query.Get("interval"))),
	}
	if err := h.validate.Struct(params); err != nil {
		sendErrorResponse(w, h.logger, "Invalid simulation request", describeValidation(err), http.StatusBadRequest, requestID)
		return
	}

	amount, err := decimal.NewFromString(params.Amount)
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid amount",
			"The 'amount' query parameter must be a decimal number", http.StatusBadRequest, requestID)
		return
	}

	start, end, err := parseRange(r)
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid date range", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	interval, err := entity.ParseInterval(params.Interval)
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid interval", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	result, err := h.service.Simulate(r.Context(), service.DCARequest{
		Symbol:   symbol,
		Amount:   amount,
		Start:    start,
		End:      end,
		Interval: interval,
	})
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, result, requestID)
}

// RegisterRoutes registers the DCA handler routes
func (h *DCAHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/dca/{symbol}", h.Simulate).Methods("GET")

	h.logger.Info("DCA routes registered", map[string]interface{}{
		"routes": []string{"GET /dca/{symbol}"},
	})
}

// describeValidation turns validator errors into a short message naming each bad parameter
func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, "'"+name+"' is required")
		case "numeric":
			msgs = append(msgs, "'"+name+"' must be a decimal number")
		case "datetime":
			msgs = append(msgs, "'"+name+"' must be in YYYY-MM-DD format")
		case "oneof":
			msgs = append(msgs, "'"+name+"' must be one of "+fe.Param())
		default:
			msgs = append(msgs, "'"+name+"' is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
