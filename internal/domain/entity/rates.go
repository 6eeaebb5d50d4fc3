package entity

// FetchedRates is the document returned by the remote rate source
type FetchedRates struct {
	Base  string             `json:"base,omitempty"`
	Date  string             `json:"date,omitempty"`
	Rates map[string]float64 `json:"rates" validate:"required,dive,keys,required,alpha,uppercase,endkeys,gt=0"`
}

// RateChange is the reported state of one currency
type RateChange struct {
	Current float64  `json:"current"`
	Change  *float64 `json:"change"`
}

// RateReport maps currency codes to their current rate and day-over-day change
type RateReport struct {
	Rates map[string]RateChange `json:"rates"`
}

// IngestSummary describes a completed ingestion run
type IngestSummary struct {
	Date       string   `json:"date"`
	Currencies []string `json:"currencies"`
}
