package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mmuslimabdulj/goat-collab/internal/auth"
	"github.com/mmuslimabdulj/goat-collab/internal/domain"
	"github.com/mmuslimabdulj/goat-collab/internal/store"
)

// AdmissionCode identifies why a connection was refused
type AdmissionCode string

const (
	CodeMissingCredential AdmissionCode = "missing_credential"
	CodeInvalidCredential AdmissionCode = "invalid_credential"
	CodeInvalidRoom       AdmissionCode = "invalid_room"
)

// AdmissionError is returned by Admit when a connection must be refused
type AdmissionError struct {
	Code   AdmissionCode
	Status int
	Err    error
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("admission refused (%s): %v", e.Code, e.Err)
}

func (e *AdmissionError) Unwrap() error {
	return e.Err
}

// Admission authenticates a connection attempt and resolves its room
type Admission struct {
	verifier TokenVerifier
	projects ProjectStore
	log      *slog.Logger
}

// NewAdmission creates the admission use case
func NewAdmission(verifier TokenVerifier, projects ProjectStore, log *slog.Logger) *Admission {
	return &Admission{verifier: verifier, projects: projects, log: log}
}

// Admit checks the room then the credential and returns the participant to
// insert into the room. Nothing is changed when an error is returned.
func (a *Admission) Admit(ctx context.Context, credential, roomID string) (domain.Participant, error) {
	if _, err := uuid.Parse(roomID); err != nil {
		return domain.Participant{}, &AdmissionError{
			Code:   CodeInvalidRoom,
			Status: http.StatusBadRequest,
			Err:    fmt.Errorf("%w: malformed project id", ErrInvalidRoom),
		}
	}

	project, err := a.projects.FindProject(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Participant{}, &AdmissionError{
			Code:   CodeInvalidRoom,
			Status: http.StatusNotFound,
			Err:    fmt.Errorf("%w: project not found", ErrInvalidRoom),
		}
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("admission: find project: %w", err)
	}

	if credential == "" {
		return domain.Participant{}, &AdmissionError{
			Code:   CodeMissingCredential,
			Status: http.StatusUnauthorized,
			Err:    auth.ErrMissingCredential,
		}
	}

	user, err := a.verifier.Verify(credential)
	if err != nil {
		a.log.Debug("Credential rejected", "project_id", roomID, "error", err)
		code := CodeInvalidCredential
		if errors.Is(err, auth.ErrMissingCredential) {
			code = CodeMissingCredential
		}
		return domain.Participant{}, &AdmissionError{
			Code:   code,
			Status: http.StatusUnauthorized,
			Err:    err,
		}
	}

	return domain.NewParticipant(user, project.ID), nil
}
