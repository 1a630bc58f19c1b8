package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names a room event on the wire
type EventType string

const (
	EventProjectMessage  EventType = "project-message"
	EventUserJoined      EventType = "user-joined"
	EventUserLeft        EventType = "user-left"
	EventUserAdded       EventType = "user-added"
	EventFileUpdated     EventType = "file-updated"
	EventAddCollaborator EventType = "add-collaborator" // client -> server only
)

// Envelope is the frame exchanged over the websocket in both directions
type Envelope struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEnvelope marshals payload into a new envelope of the given type
func NewEnvelope(eventType EventType, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   raw,
		CreatedAt: time.Now(),
	}, nil
}

// Encode returns the JSON frame sent to clients
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Message is a chat line shown in the room. The concrete variants are
// UserMessage, SystemMessage, AIMessage and ErrorMessage.
type Message interface {
	message()
}

// UserMessage is chat text written by a room member
type UserMessage struct {
	Text        string
	SenderID    string
	SenderEmail string
}

// SystemMessage is a server notice
type SystemMessage struct {
	Text string
}

// AIMessage is text produced by (or on behalf of) the assistant
type AIMessage struct {
	Text string
}

// ErrorMessage reports a rejected operation to the client that asked for it
type ErrorMessage struct {
	Text string
}

func (UserMessage) message()   {}
func (SystemMessage) message() {}
func (AIMessage) message()     {}
func (ErrorMessage) message()  {}

// Fixed sender identities rendered for non-user messages
var (
	SenderAI     = User{ID: "ai", Email: "AI"}
	SenderSystem = User{ID: "system", Email: "System"}
	SenderError  = User{ID: "error", Email: "Error"}
)

// ChatPayload is the payload of a project-message event
type ChatPayload struct {
	Message string `json:"message" validate:"required"`
	Sender  *User  `json:"sender,omitempty"`
}

// RenderMessage converts a Message variant to its wire payload
func RenderMessage(m Message) ChatPayload {
	switch v := m.(type) {
	case UserMessage:
		return ChatPayload{Message: v.Text, Sender: &User{ID: v.SenderID, Email: v.SenderEmail}}
	case SystemMessage:
		return ChatPayload{Message: v.Text, Sender: &SenderSystem}
	case AIMessage:
		return ChatPayload{Message: v.Text, Sender: &SenderAI}
	case ErrorMessage:
		return ChatPayload{Message: v.Text, Sender: &SenderError}
	default:
		panic(fmt.Sprintf("domain: unknown message variant %T", m))
	}
}

// MessageEnvelope wraps a Message into a project-message envelope
func MessageEnvelope(m Message) (Envelope, error) {
	return NewEnvelope(EventProjectMessage, RenderMessage(m))
}

// MemberPayload is the payload of user-joined, user-left and user-added
type MemberPayload struct {
	User User `json:"user"`
}

// FileTreePayload is the payload of file-updated
type FileTreePayload struct {
	FileTree FileTree `json:"fileTree" validate:"required"`
}

// AddCollaboratorPayload is the payload of add-collaborator
type AddCollaboratorPayload struct {
	Email string `json:"email" validate:"required,email,max=254"`
}
