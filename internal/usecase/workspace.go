package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

// Workspace routes events received from a participant to the operation
// that handles them. It is the event handler of every websocket client.
type Workspace struct {
	chat          *Interceptor
	files         *FileTreeSync
	collaborators *Collaborators
	log           *slog.Logger
}

// NewWorkspace wires the room operations together
func NewWorkspace(chat *Interceptor, files *FileTreeSync, collaborators *Collaborators, log *slog.Logger) *Workspace {
	return &Workspace{
		chat:          chat,
		files:         files,
		collaborators: collaborators,
		log:           log,
	}
}

// HandleEvent runs one inbound event. A returned error is meant for the
// participant that sent the event; the room is unaffected by it.
func (w *Workspace) HandleEvent(ctx context.Context, p domain.Participant, env domain.Envelope) error {
	switch env.Type {
	case domain.EventProjectMessage:
		var payload domain.ChatPayload
		if err := decodePayload(env.Payload, &payload); err != nil {
			return eventError("Message text is required.", err)
		}
		// The sender is always the authenticated participant, whatever the client claims
		return w.chat.HandleChat(ctx, p, payload.Message)

	case domain.EventFileUpdated:
		var payload domain.FileTreePayload
		if err := decodePayload(env.Payload, &payload); err != nil {
			return eventError("File tree is required.", err)
		}
		return w.files.Update(ctx, p, payload.FileTree)

	case domain.EventAddCollaborator:
		var payload domain.AddCollaboratorPayload
		if err := decodePayload(env.Payload, &payload); err != nil {
			return eventError("A valid email address is required.", err)
		}
		_, err := w.collaborators.Add(ctx, p.RoomID, p.User, payload.Email)
		return err

	default:
		w.log.Debug("Unsupported event", "type", env.Type, "conn_id", p.ConnID)
		return eventError(fmt.Sprintf("Unsupported event type %q.", env.Type), ErrUnsupportedEvent)
	}
}
