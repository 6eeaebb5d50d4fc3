// Package handler internal/infrastructure/handler/rates_handler.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/apperrors"
	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// Ingester runs one fetch-and-store pass
type Ingester interface {
	Ingest(ctx context.Context) (*entity.IngestSummary, error)
}

// Reporter builds the report of today's rates
type Reporter interface {
	Report(ctx context.Context) (*entity.RateReport, error)
}

// RatesHandler handles HTTP requests for ingesting and reporting exchange rates
type RatesHandler struct {
	ingester Ingester
	reporter Reporter
	logger   logger.Logger
}

// NewRatesHandler creates a new rates handler
func NewRatesHandler(ingester Ingester, reporter Reporter, log logger.Logger) *RatesHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RatesHandler{
		ingester: ingester,
		reporter: reporter,
		logger:   log,
	}
}

// FetchExchangeRates handles a request to pull today's rates into the store
func (h *RatesHandler) FetchExchangeRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	summary, err := h.ingester.Ingest(r.Context())
	if err != nil {
		sendErrorResponse(w, h.logger, apperrors.Message(err), http.StatusInternalServerError, requestID)
		return
	}

	h.logger.Info("Rates fetched and updated", map[string]interface{}{
		"request_id": requestID,
		"date":       summary.Date,
		"count":      len(summary.Currencies),
	})

	sendJSON(w, http.StatusOK, IngestSuccessMessage)
}

// GetExchangeRates handles a request for today's rates and their change
func (h *RatesHandler) GetExchangeRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	report, err := h.reporter.Report(r.Context())
	if err != nil {
		sendErrorResponse(w, h.logger, apperrors.Message(err), http.StatusInternalServerError, requestID)
		return
	}

	sendJSON(w, http.StatusOK, report)
}

// RegisterRoutes registers the rates handler routes
func (h *RatesHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/fetch-exchange-rates", h.FetchExchangeRates).Methods(http.MethodPost)
	router.HandleFunc("/exchange-rates", h.GetExchangeRates).Methods(http.MethodGet)

	h.logger.Info("Rates routes registered", map[string]interface{}{
		"routes": []string{
			"POST /fetch-exchange-rates",
			"GET /exchange-rates",
		},
	})
}

// NewRouter builds the API router with its middleware chain.
// mux only runs Use middleware on matched routes, so the 404 and 405 handlers are wrapped by hand.
func NewRouter(h *RatesHandler, log logger.Logger) *mux.Router {
	chain := []mux.MiddlewareFunc{
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.RecoveryMiddleware(log),
	}

	router := mux.NewRouter()
	router.Use(chain...)
	router.NotFoundHandler = wrap(chain, errorHandler(log, "Not found", http.StatusNotFound))
	router.MethodNotAllowedHandler = wrap(chain, errorHandler(log, "Method not allowed", http.StatusMethodNotAllowed))
	h.RegisterRoutes(router)
	return router
}

func wrap(chain []mux.MiddlewareFunc, handler http.Handler) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i].Middleware(handler)
	}
	return handler
}

func errorHandler(log logger.Logger, message string, statusCode int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendErrorResponse(w, log, message, statusCode, middleware.GetRequestID(r.Context()))
	})
}

func sendJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message string, statusCode int, requestID string) {
	log.Error("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"error":       message,
	})

	sendJSON(w, statusCode, ErrorResponse{
		Error:     message,
		RequestID: requestID,
	})
}
