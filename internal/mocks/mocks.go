// internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockRateRepository mocks the RateRepository interface
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) GetPreviousRate(ctx context.Context, currency string) (*float64, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

func (m *MockRateRepository) PutRecord(ctx context.Context, currency string, rate float64, date string, previousRate *float64) error {
	args := m.Called(ctx, currency, rate, date, previousRate)
	return args.Error(0)
}

func (m *MockRateRepository) ScanAll(ctx context.Context) ([]entity.RateRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.RateRecord), args.Error(1)
}

// MockRateSource mocks the RateSource interface
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchRates(ctx context.Context) (*entity.FetchedRates, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FetchedRates), args.Error(1)
}

func (m *MockRateSource) Today() string {
	args := m.Called()
	return args.String(0)
}

// FixedClock is a Clock that always reports the same date
type FixedClock string

func (c FixedClock) Today() string {
	return string(c)
}
