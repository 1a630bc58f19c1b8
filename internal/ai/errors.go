// Package ai implements the text generation backends used by the @ai
// command. Every backend has the method Generate(ctx, prompt) (string, error).
package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrOverloaded is returned when the backend reports it is over capacity (HTTP 503)
	ErrOverloaded = errors.New("generation backend overloaded")

	// ErrRateLimited is returned when the backend throttles us (HTTP 429)
	ErrRateLimited = errors.New("generation backend rate limited")

	// ErrEmptyResponse is returned when the backend answered without any text
	ErrEmptyResponse = errors.New("generation backend returned no text")
)

// ProviderError is a non-200 answer from the backend
type ProviderError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ai: provider error (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("ai: provider error (HTTP %d %s): %s", e.StatusCode, e.Status, e.Message)
}

// Unwrap classifies throttling and overload so callers can use errors.Is
func (e *ProviderError) Unwrap() error {
	switch e.StatusCode {
	case 429:
		return ErrRateLimited
	case 503:
		return ErrOverloaded
	}
	return nil
}
