package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
	"github.com/mmuslimabdulj/goat-collab/internal/store"
)

// Collaborators adds members to a project and announces them to its room
type Collaborators struct {
	projects     ProjectStore
	broadcaster  Broadcaster
	storeTimeout time.Duration
	log          *slog.Logger
}

// NewCollaborators creates the collaborator use case
func NewCollaborators(projects ProjectStore, broadcaster Broadcaster, storeTimeout time.Duration, log *slog.Logger) *Collaborators {
	if storeTimeout <= 0 {
		storeTimeout = domain.StoreTimeout
	}
	return &Collaborators{
		projects:     projects,
		broadcaster:  broadcaster,
		storeTimeout: storeTimeout,
		log:          log,
	}
}

// Add makes the user registered under email a collaborator of projectID on
// behalf of requester. user-added is broadcast to the whole room only once
// the store has accepted the change; on error nothing is broadcast.
func (c *Collaborators) Add(ctx context.Context, projectID string, requester domain.User, email string) (domain.User, error) {
	payload := domain.AddCollaboratorPayload{Email: email}
	if err := validate.Struct(payload); err != nil {
		return domain.User{}, eventError("A valid email address is required.", fmt.Errorf("%w: %v", ErrInvalidPayload, err))
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.storeTimeout)
	defer cancel()

	user, err := c.projects.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, eventError("User not found.", err)
	}
	if err != nil {
		return domain.User{}, c.failed(projectID, err)
	}

	err = c.projects.AddMember(ctx, projectID, requester.ID, user.ID)
	switch {
	case errors.Is(err, store.ErrAlreadyMember):
		return domain.User{}, eventError("User is already a collaborator in this project.", err)
	case errors.Is(err, store.ErrForbidden):
		return domain.User{}, eventError("Only project collaborators can add members.", err)
	case errors.Is(err, store.ErrNotFound):
		return domain.User{}, eventError("Project not found.", err)
	case err != nil:
		return domain.User{}, c.failed(projectID, err)
	}

	c.log.Info("Collaborator added", "project_id", projectID, "user_id", user.ID, "by", requester.ID)

	env, err := domain.NewEnvelope(domain.EventUserAdded, domain.MemberPayload{User: user})
	if err != nil {
		return user, err
	}
	c.broadcaster.Broadcast(projectID, env, "")
	return user, nil
}

func (c *Collaborators) failed(projectID string, err error) error {
	c.log.Error("Add collaborator", "project_id", projectID, "error", err)
	return eventError("Could not add the collaborator. Please try again.", err)
}
