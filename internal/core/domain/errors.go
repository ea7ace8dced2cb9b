package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedMode indicates a query mode outside the closed set
	ErrUnsupportedMode = errors.New("unsupported query mode")

	// ErrUnsupportedType indicates a document type no extractor handles
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrFileTooLarge indicates an upload above the configured size limit
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyContent indicates a document produced no extractable text
	ErrEmptyContent = errors.New("no text content extracted")

	// ErrDimensionMismatch indicates a vector does not match the index dimension
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrBlockedURL indicates a URL pointing at a local or private host
	ErrBlockedURL = errors.New("url not allowed")

	// ErrRateLimited indicates the caller exceeded the request budget
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Stage names a step of the ingestion or query pipeline.
type Stage string

const (
	StageIngestion Stage = "ingestion"
	StageRetrieval Stage = "retrieval"
	StageSynthesis Stage = "synthesis"
)

// StageError attaches pipeline stage context to an underlying failure.
type StageError struct {
	Stage Stage
	Op    string
	Err   error
}

// NewStageError wraps err with stage context. Returns nil when err is nil.
func NewStageError(stage Stage, op string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Op: op, Err: err}
}

func (e *StageError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s failed: %s: %v", e.Stage, e.Op, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf reports the pipeline stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
