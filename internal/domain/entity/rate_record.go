package entity

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for record dates
const DateLayout = "2006-01-02"

// RateRecord is the persisted rate of one currency. Key names match the stored document shape.
type RateRecord struct {
	Currency     string   `json:"Currency" bson:"Currency"`
	Rate         float64  `json:"Rate" bson:"Rate"`
	Date         string   `json:"Date" bson:"Date"`
	PreviousRate *float64 `json:"PreviousRate,omitempty" bson:"PreviousRate,omitempty"`
}

// Validate ensures the record has the documented shape
func (r *RateRecord) Validate() error {
	if r.Currency == "" {
		return errors.New("currency must not be empty")
	}

	if math.IsNaN(r.Rate) || math.IsInf(r.Rate, 0) || r.Rate <= 0 {
		return fmt.Errorf("rate for %s must be a positive finite number, got %v", r.Currency, r.Rate)
	}

	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("date for %s must be YYYY-MM-DD, got %q", r.Currency, r.Date)
	}

	if r.PreviousRate != nil && (math.IsNaN(*r.PreviousRate) || math.IsInf(*r.PreviousRate, 0)) {
		return fmt.Errorf("previous rate for %s must be finite", r.Currency)
	}

	return nil
}

// Change returns rate minus previous rate, or nil when no previous rate was recorded.
// The subtraction is decimal so 1.1 - 1.0 reports 0.1.
func (r *RateRecord) Change() *float64 {
	if r.PreviousRate == nil {
		return nil
	}

	change, _ := decimal.NewFromFloat(r.Rate).Sub(decimal.NewFromFloat(*r.PreviousRate)).Float64()
	return &change
}
