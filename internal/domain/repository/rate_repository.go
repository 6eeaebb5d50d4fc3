// Package repository internal/domain/repository/rate_repository.go
package repository

import (
	"context"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
)

// RateRepository defines the interface for per-currency rate storage
type RateRepository interface {
	// GetPreviousRate returns the stored rate for a currency, or nil if no record exists
	GetPreviousRate(ctx context.Context, currency string) (*float64, error)

	// PutRecord overwrites the record for a currency
	PutRecord(ctx context.Context, currency string, rate float64, date string, previousRate *float64) error

	// ScanAll returns every stored record in no particular order
	ScanAll(ctx context.Context) ([]entity.RateRecord, error)
}
