package service

import (
	"context"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
)

// Clock supplies the reference date used to tag and filter records
type Clock interface {
	// Today returns the current date formatted YYYY-MM-DD
	Today() string
}

// RateSource defines the interface for the remote daily rate provider
type RateSource interface {
	Clock

	// FetchRates retrieves the day's rates
	FetchRates(ctx context.Context) (*entity.FetchedRates, error)
}
