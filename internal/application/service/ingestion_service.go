// Package service internal/application/service/ingestion_service.go
package service

import (
	"context"
	"errors"
	"sort"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/apperrors"
	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
	"github.com/damon-houk/exchange-rate-tracker/internal/domain/repository"
	domainservice "github.com/damon-houk/exchange-rate-tracker/internal/domain/service"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/middleware"
)

// IngestionService fetches the day's rates and records them with their previous value
type IngestionService struct {
	source domainservice.RateSource
	store  repository.RateRepository
	logger logger.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(source domainservice.RateSource, store repository.RateRepository, log logger.Logger) *IngestionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &IngestionService{
		source: source,
		store:  store,
		logger: log,
	}
}

// Ingest runs one fetch-and-store pass. It stops at the first failing currency;
// currencies written before the failure stay written.
func (s *IngestionService) Ingest(ctx context.Context) (*entity.IngestSummary, error) {
	requestID := middleware.GetRequestID(ctx)

	fetched, err := s.source.FetchRates(ctx)
	if err != nil {
		var fetchErr *apperrors.FetchError
		if !errors.As(err, &fetchErr) {
			err = &apperrors.FetchError{Err: err}
		}

		s.logger.Error("Ingestion aborted, rates unavailable", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return nil, err
	}

	// One reference date for the whole run
	today := s.source.Today()

	currencies := make([]string, 0, len(fetched.Rates))
	for currency := range fetched.Rates {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	s.logger.Info("Ingesting exchange rates", map[string]interface{}{
		"request_id": requestID,
		"date":       today,
		"count":      len(currencies),
	})

	for _, currency := range currencies {
		rate := fetched.Rates[currency]

		previous, err := s.store.GetPreviousRate(ctx, currency)
		if err != nil {
			return nil, s.storeFailure(requestID, apperrors.OpGet, currency, err)
		}

		if err := s.store.PutRecord(ctx, currency, rate, today, previous); err != nil {
			return nil, s.storeFailure(requestID, apperrors.OpPut, currency, err)
		}

		s.logger.Debug("Rate updated", map[string]interface{}{
			"request_id":    requestID,
			"currency":      currency,
			"rate":          rate,
			"previous_rate": previous,
		})
	}

	s.logger.Info("Exchange rates ingested", map[string]interface{}{
		"request_id": requestID,
		"date":       today,
		"count":      len(currencies),
	})

	return &entity.IngestSummary{
		Date:       today,
		Currencies: currencies,
	}, nil
}

func (s *IngestionService) storeFailure(requestID string, op apperrors.StoreOp, currency string, err error) error {
	var storeErr *apperrors.StoreError
	if !errors.As(err, &storeErr) {
		err = &apperrors.StoreError{Op: op, Currency: currency, Err: err}
	}

	s.logger.Error("Ingestion aborted, store failure", map[string]interface{}{
		"request_id": requestID,
		"currency":   currency,
		"error":      err.Error(),
	})

	return err
}
