package handler

import (
	"net/http"

	"github.com/damon-houk/dca-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// RouteRegistrar is implemented by every handler in this package
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// NewRouter builds the API router with request ID, recovery and logging middleware
func NewRouter(log logger.Logger, handlers ...RouteRegistrar) *mux.Router {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		sendJSON(w, log, map[string]string{"status": "ok"}, middleware.GetRequestID(r.Context()))
	}).Methods("GET")

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	return router
}
