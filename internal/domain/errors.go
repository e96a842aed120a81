package domain

import (
	"fmt"
	"time"
)

// Error codes for different failure scenarios
const (
	ErrInvalidInput         = "INVALID_INPUT"
	ErrMissingRequiredInput = "MISSING_REQUIRED_INPUT"
	ErrInsufficientEvidence = "INSUFFICIENT_EVIDENCE"
	ErrDatabaseError        = "DATABASE_ERROR"
	ErrCacheError           = "CACHE_ERROR"
	ErrRateLimit            = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer       = "INTERNAL_SERVER_ERROR"
)

// APIError is a standardized error response.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new APIError with timestamp.
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// MissingInputError reports a required input absent from a computation.
// It is fatal for that computation path only; callers degrade by skipping
// the affected score family and continuing with the rest.
type MissingInputError struct {
	Field string `json:"field"`
}

// Error implements the error interface.
func (e *MissingInputError) Error() string {
	return fmt.Sprintf("required input %q is missing", e.Field)
}

// ValidationError reports an invalid request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}
