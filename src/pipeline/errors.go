package pipeline

import (
	"errors"
	"fmt"
)

const (
	StoreDynamoDB = "dynamodb"
	StoreS3       = "s3"
)

// ValidationError means the feature string was rejected before scoring.
type ValidationError struct {
	VIN  string
	Date string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid features for vin=%s date=%s: %v", e.VIN, e.Date, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ScoringError means the endpoint could not produce a usable probability.
type ScoringError struct {
	VIN  string
	Date string
	Err  error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring failed for vin=%s date=%s: %v", e.VIN, e.Date, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// StoreWriteError names the store that failed. An earlier successful write is not undone.
type StoreWriteError struct {
	Store     string
	RequestID string
	VIN       string
	Date      string
	Err       error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("failed to write %s record %s for vin=%s date=%s: %v", e.Store, e.RequestID, e.VIN, e.Date, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// Kind classifies err for logs and summaries.
func Kind(err error) string {
	var (
		validationErr *ValidationError
		scoringErr    *ScoringError
		storeErr      *StoreWriteError
	)

	switch {
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &scoringErr):
		return "scoring"
	case errors.As(err, &storeErr):
		return "store"
	default:
		return "unknown"
	}
}

// RequestID returns the request id carried by err, if one was generated before it failed.
func RequestID(err error) string {
	var storeErr *StoreWriteError
	if errors.As(err, &storeErr) {
		return storeErr.RequestID
	}
	return ""
}
