package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(ErrInvalidInput, "bad request", "field user_age", "corr-123")

	assert.Equal(t, ErrInvalidInput, err.Code)
	assert.Equal(t, "corr-123", err.RequestID)
	assert.False(t, err.Timestamp.IsZero())
	assert.Equal(t, "INVALID_INPUT: bad request", err.Error())
}

func TestMissingInputError(t *testing.T) {
	var err error = &MissingInputError{Field: "age_years"}
	assert.Contains(t, err.Error(), "age_years")

	var missing *MissingInputError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "age_years", missing.Field)
}

func TestValidationError(t *testing.T) {
	var err error = &ValidationError{Field: "measurements", Message: "at least one measurement is required", Value: 0}
	assert.Contains(t, err.Error(), "measurements")
	assert.Contains(t, err.Error(), "at least one measurement is required")
}
