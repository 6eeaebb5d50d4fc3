// internal/application/service/reporting_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/apperrors"
	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/exchange-rate-tracker/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	log := logger.NewJSONLogger(nil, logger.ErrorLevel)
	ctx := context.Background()

	t.Run("Reports today's records only", func(t *testing.T) {
		store := new(mocks.MockRateRepository)
		service := NewReportingService(mocks.FixedClock(today), store, log)

		store.On("ScanAll", mock.Anything).Return([]entity.RateRecord{
			{Currency: "USD", Rate: 1.1, Date: today, PreviousRate: float(1.0)},
			{Currency: "EUR", Rate: 0.9, Date: today, PreviousRate: float(0.85)},
			{Currency: "GBP", Rate: 0.8, Date: "2023-10-12"},
		}, nil).Once()

		report, err := service.Report(ctx)

		require.NoError(t, err)
		require.Len(t, report.Rates, 2)
		assert.Equal(t, 1.1, report.Rates["USD"].Current)
		assert.Equal(t, 0.1, *report.Rates["USD"].Change)
		assert.Equal(t, 0.9, report.Rates["EUR"].Current)
		assert.Equal(t, 0.05, *report.Rates["EUR"].Change)
		assert.NotContains(t, report.Rates, "GBP")

		store.AssertExpectations(t)
	})

	t.Run("Missing previous rate reports null change", func(t *testing.T) {
		store := new(mocks.MockRateRepository)
		service := NewReportingService(mocks.FixedClock(today), store, log)

		store.On("ScanAll", mock.Anything).Return([]entity.RateRecord{
			{Currency: "JPY", Rate: 150.0, Date: today},
		}, nil).Once()

		report, err := service.Report(ctx)

		require.NoError(t, err)
		assert.Equal(t, entity.RateChange{Current: 150.0}, report.Rates["JPY"])
	})

	t.Run("No current rates", func(t *testing.T) {
		store := new(mocks.MockRateRepository)
		service := NewReportingService(mocks.FixedClock(today), store, log)

		store.On("ScanAll", mock.Anything).Return([]entity.RateRecord{
			{Currency: "USD", Rate: 1.1, Date: "2023-10-12"},
			{Currency: "EUR", Rate: 0.9, Date: "2023-10-12"},
		}, nil).Once()

		report, err := service.Report(ctx)

		require.NoError(t, err)
		assert.NotNil(t, report.Rates)
		assert.Empty(t, report.Rates)
	})

	t.Run("Stale records are skipped regardless of content", func(t *testing.T) {
		store := new(mocks.MockRateRepository)
		service := NewReportingService(mocks.FixedClock(today), store, log)

		store.On("ScanAll", mock.Anything).Return([]entity.RateRecord{
			{Currency: "XAU", Rate: 0, Date: "2023-10-12"},
			{Currency: "", Rate: -1, Date: "garbage"},
			{Currency: "USD", Rate: 1.1, Date: today},
		}, nil).Once()

		report, err := service.Report(ctx)

		require.NoError(t, err)
		assert.Equal(t, map[string]entity.RateChange{"USD": {Current: 1.1}}, report.Rates)
	})

	t.Run("Invalid record dated today", func(t *testing.T) {
		store := new(mocks.MockRateRepository)
		service := NewReportingService(mocks.FixedClock(today), store, log)

		store.On("ScanAll", mock.Anything).Return([]entity.RateRecord{
			{Currency: "XAU", Rate: 0, Date: today},
		}, nil).Once()

		report, err := service.Report(ctx)

		assert.Nil(t, report)
		var storeErr *apperrors.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.Equal(t, apperrors.OpScan, storeErr.Op)
		assert.Contains(t, apperrors.Message(err), "XAU")
	})

	t.Run("Scan failure", func(t *testing.T) {
		store := new(mocks.MockRateRepository)
		service := NewReportingService(mocks.FixedClock(today), store, log)

		store.On("ScanAll", mock.Anything).Return(nil, errors.New("Fetch error")).Once()

		report, err := service.Report(ctx)

		assert.Nil(t, report)
		var storeErr *apperrors.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.Equal(t, apperrors.OpScan, storeErr.Op)
		assert.Contains(t, apperrors.Message(err), "Fetch error")
	})
}
