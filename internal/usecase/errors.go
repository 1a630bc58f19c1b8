package usecase

import (
	"errors"
	"net/http"

	"github.com/mmuslimabdulj/goat-collab/internal/store"
)

var (
	// ErrInvalidRoom means the room id is malformed or names no project
	ErrInvalidRoom = errors.New("invalid room")

	// ErrInvalidPayload means an inbound event or request body failed validation
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrUnsupportedEvent means the client sent an event type the server does not handle
	ErrUnsupportedEvent = errors.New("unsupported event type")
)

// EventError is a failure reported back to the client that caused it.
// Text is safe to show to users; Err keeps the cause for errors.Is.
type EventError struct {
	Text string
	Err  error
}

func (e *EventError) Error() string {
	return e.Text
}

func (e *EventError) Unwrap() error {
	return e.Err
}

func eventError(text string, err error) error {
	return &EventError{Text: text, Err: err}
}

// StatusCode maps an operation error to the HTTP status the REST API answers with
func StatusCode(err error) int {
	var admissionErr *AdmissionError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &admissionErr):
		return admissionErr.Status
	case errors.Is(err, ErrInvalidPayload), errors.Is(err, store.ErrAlreadyMember):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound), errors.Is(err, ErrInvalidRoom):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var errEmptyGeneration = errors.New("generator returned empty text")
