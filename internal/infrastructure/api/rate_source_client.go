package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/apperrors"
	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/logger"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes bounds how much of the source response is read
const maxBodyBytes = 1 << 20

// RateSourceClient fetches the day's rates from the remote source over HTTP
type RateSourceClient struct {
	url        string
	httpClient *http.Client
	validate   *validator.Validate
	now        func() time.Time
	logger     logger.Logger
}

// NewRateSourceClient creates a new rate source client
func NewRateSourceClient(url string, httpClient *http.Client, log logger.Logger) *RateSourceClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateSourceClient{
		url:        url,
		httpClient: httpClient,
		validate:   validator.New(),
		now:        time.Now,
		logger:     log,
	}
}

// Today returns the process clock's date formatted YYYY-MM-DD
func (c *RateSourceClient) Today() string {
	return c.now().Format(entity.DateLayout)
}

// FetchRates retrieves the day's rates. Any failure is a *apperrors.FetchError; nothing is retried.
func (c *RateSourceClient) FetchRates(ctx context.Context) (*entity.FetchedRates, error) {
	rates, err := c.fetch(ctx)
	if err != nil {
		c.logger.Error("Failed to fetch exchange rates", map[string]interface{}{
			"url":   c.url,
			"error": err.Error(),
		})
		return nil, &apperrors.FetchError{Err: err}
	}

	c.logger.Info("Fetched exchange rates", map[string]interface{}{
		"url":         c.url,
		"base":        rates.Base,
		"source_date": rates.Date,
		"count":       len(rates.Rates),
	})

	return rates, nil
}

func (c *RateSourceClient) fetch(ctx context.Context) (*entity.FetchedRates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Add Accept header to ensure JSON response
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("API returned error status: %d, body: %s", resp.StatusCode, string(body))
	}

	var rates entity.FetchedRates
	if err := json.Unmarshal(body, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if err := c.validate.Struct(&rates); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, fmt.Errorf("unexpected response shape: %s", validationErrs.Error())
		}
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}

	return &rates, nil
}
