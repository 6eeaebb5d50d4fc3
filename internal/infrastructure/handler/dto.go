package handler

// IngestSuccessMessage is the body returned by a successful ingestion
const IngestSuccessMessage = "Rates fetched and updated successfully!"

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
