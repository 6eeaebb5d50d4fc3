package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/apperrors"
	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
	"github.com/damon-houk/exchange-rate-tracker/internal/domain/repository"
	domainservice "github.com/damon-houk/exchange-rate-tracker/internal/domain/service"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/middleware"
)

// ReportingService reports today's rates and their change since the previous ingestion
type ReportingService struct {
	clock  domainservice.Clock
	store  repository.RateRepository
	logger logger.Logger
}

// NewReportingService creates a new reporting service
func NewReportingService(clock domainservice.Clock, store repository.RateRepository, log logger.Logger) *ReportingService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ReportingService{
		clock:  clock,
		store:  store,
		logger: log,
	}
}

// Report returns the records dated today. An empty report is not an error.
// Records from other days are skipped before their content is looked at.
func (s *ReportingService) Report(ctx context.Context) (*entity.RateReport, error) {
	requestID := middleware.GetRequestID(ctx)
	today := s.clock.Today()

	records, err := s.store.ScanAll(ctx)
	if err != nil {
		var storeErr *apperrors.StoreError
		if !errors.As(err, &storeErr) {
			err = &apperrors.StoreError{Op: apperrors.OpScan, Err: err}
		}

		s.logger.Error("Failed to scan rates", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return nil, err
	}

	report := &entity.RateReport{
		Rates: make(map[string]entity.RateChange),
	}

	for i := range records {
		if records[i].Date != today {
			continue
		}

		if err := records[i].Validate(); err != nil {
			err = &apperrors.StoreError{Op: apperrors.OpScan, Err: fmt.Errorf("invalid record: %w", err)}
			s.logger.Error("Stored rate is invalid", map[string]interface{}{
				"request_id": requestID,
				"currency":   records[i].Currency,
				"error":      err.Error(),
			})
			return nil, err
		}

		report.Rates[records[i].Currency] = entity.RateChange{
			Current: records[i].Rate,
			Change:  records[i].Change(),
		}
	}

	s.logger.Info("Rates reported", map[string]interface{}{
		"request_id": requestID,
		"date":       today,
		"scanned":    len(records),
		"reported":   len(report.Rates),
	})

	return report, nil
}
