// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Pipeline errors.
	ErrNoTransactions = errors.New("no transactions to process")
	ErrNoValidRows    = errors.New("no valid transactions after cleaning")
	ErrNotFitted      = errors.New("model not fitted")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports an out-of-domain value supplied at inference
// time. It is surfaced to the caller and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a named input field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ArtifactLoadError reports a missing or corrupt persisted model artifact.
// It is fatal at process start: serving must not begin until both
// artifacts load successfully.
type ArtifactLoadError struct {
	Err  error
	Path string
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("failed to load artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

// NewArtifactLoadError wraps an artifact read failure with its path.
func NewArtifactLoadError(path string, err error) error {
	return &ArtifactLoadError{Path: path, Err: err}
}
