// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotInitialized indicates the search engine was used before its
	// indexes and embedding maps were built.
	ErrNotInitialized = errors.New("search engine not initialized")

	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates the caller provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates no embedding provider is configured.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrEmbeddingMismatch indicates stored embeddings were produced with a
	// different model, prefix convention, or dimension than configured.
	ErrEmbeddingMismatch = errors.New("embedding set incompatible with configuration")
)

// EmbeddingError represents an embedding provider failure with context.
type EmbeddingError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *EmbeddingError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("embedding error (provider=%s, status=%d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("embedding error (provider=%s): %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// NewEmbeddingError creates a new embedding error.
func NewEmbeddingError(provider string, statusCode int, err error) *EmbeddingError {
	return &EmbeddingError{
		Provider:   provider,
		StatusCode: statusCode,
		Err:        err,
	}
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
