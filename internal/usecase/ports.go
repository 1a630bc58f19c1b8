//go:generate go run go.uber.org/mock/mockgen -source=ports.go -destination=../mocks/mock_ports.go -package=mocks
package usecase

import (
	"context"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
	"github.com/mmuslimabdulj/goat-collab/internal/store"
)

// TokenVerifier turns a bearer credential into an identity
type TokenVerifier interface {
	Verify(token string) (domain.User, error)
}

// ProjectStore is the persistence the workspace operations need
type ProjectStore interface {
	FindProject(ctx context.Context, id string) (store.Project, error)
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	Members(ctx context.Context, projectID string) ([]domain.User, error)
	SaveFileTree(ctx context.Context, projectID string, tree domain.FileTree) error
	AddMember(ctx context.Context, projectID, requesterID, userID string) error
}

// Generator produces assistant text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Broadcaster delivers an envelope to the live participants of a room.
// excludeConnID, when not empty, skips that connection. It reports false
// when the room no longer exists.
type Broadcaster interface {
	Broadcast(roomID string, env domain.Envelope, excludeConnID string) bool
}
