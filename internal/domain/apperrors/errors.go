// Package apperrors holds the two failure kinds of the rate tracker.
package apperrors

import (
	"errors"
	"fmt"
)

// StoreOp names the store operation that failed
type StoreOp string

const (
	OpGet  StoreOp = "get"
	OpPut  StoreOp = "put"
	OpScan StoreOp = "scan"
)

// FetchError reports that the remote rate source was unreachable or answered with an error.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch exchange rates: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StoreError reports a backend read, write or scan failure.
// Currency is empty for scans.
type StoreError struct {
	Op       StoreOp
	Currency string
	Err      error
}

func (e *StoreError) Error() string {
	switch e.Op {
	case OpGet:
		return fmt.Sprintf("error getting previous rate for %s: %v", e.Currency, e.Err)
	case OpPut:
		return fmt.Sprintf("error updating rate for %s: %v", e.Currency, e.Err)
	default:
		return fmt.Sprintf("error fetching rates from store: %v", e.Err)
	}
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Message renders err as the human readable text returned to API callers
func Message(err error) string {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fmt.Sprintf("Failed to fetch exchange rates: %v", fetchErr.Err)
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) && storeErr.Currency != "" {
		return fmt.Sprintf("Failed to update rate for %s: %v", storeErr.Currency, storeErr)
	}

	return err.Error()
}
