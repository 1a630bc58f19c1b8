package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
	"github.com/mmuslimabdulj/goat-collab/internal/mocks"
)

func newTestWorkspace(t *testing.T) (*Workspace, *mocks.MockProjectStore, *mocks.MockGenerator, *recordingBroadcaster) {
	t.Helper()
	ctrl := gomock.NewController(t)
	projects := mocks.NewMockProjectStore(ctrl)
	gen := mocks.NewMockGenerator(ctrl)
	b := &recordingBroadcaster{}

	log := testLogger()
	ws := NewWorkspace(
		NewInterceptor(gen, b, time.Second, log),
		NewFileTreeSync(projects, b, time.Second, 1<<16, log),
		NewCollaborators(projects, b, time.Second, log),
		log,
	)
	return ws, projects, gen, b
}

func envelope(t *testing.T, eventType domain.EventType, payload any) domain.Envelope {
	t.Helper()
	env, err := domain.NewEnvelope(eventType, payload)
	require.NoError(t, err)
	return env
}

func TestWorkspace_ChatSenderComesFromParticipant(t *testing.T) {
	req := require.New(t)
	ws, _, _, b := newTestWorkspace(t)
	p := testParticipant()

	spoofed := domain.ChatPayload{Message: "hi", Sender: &domain.User{ID: "u-mallory", Email: "mallory@example.com"}}
	req.NoError(ws.HandleEvent(context.Background(), p, envelope(t, domain.EventProjectMessage, spoofed)))

	sent := b.all()
	req.Len(sent, 1)
	req.Equal(&p.User, chatPayload(t, sent[0].env).Sender)
}

func TestWorkspace_FileUpdateRouted(t *testing.T) {
	req := require.New(t)
	ws, projects, _, b := newTestWorkspace(t)
	p := testParticipant()
	tree := domain.FileTree{"main.go": "package main"}

	projects.EXPECT().SaveFileTree(gomock.Any(), p.RoomID, tree).Return(nil)

	req.NoError(ws.HandleEvent(context.Background(), p, envelope(t, domain.EventFileUpdated, domain.FileTreePayload{FileTree: tree})))

	sent := b.all()
	req.Len(sent, 1)
	req.Equal(domain.EventFileUpdated, sent[0].env.Type)
	req.Equal(p.ConnID, sent[0].exclude)
}

func TestWorkspace_AddCollaboratorRouted(t *testing.T) {
	req := require.New(t)
	ws, projects, _, b := newTestWorkspace(t)
	p := testParticipant()
	bob := domain.User{ID: "u-bob", Email: "bob@example.com"}

	projects.EXPECT().FindUserByEmail(gomock.Any(), bob.Email).Return(bob, nil)
	projects.EXPECT().AddMember(gomock.Any(), p.RoomID, p.User.ID, bob.ID).Return(nil)

	req.NoError(ws.HandleEvent(context.Background(), p, envelope(t, domain.EventAddCollaborator, domain.AddCollaboratorPayload{Email: bob.Email})))

	sent := b.all()
	req.Len(sent, 1)
	req.Equal(domain.EventUserAdded, sent[0].env.Type)
	req.Empty(sent[0].exclude)
}

func TestWorkspace_RejectsBadEvents(t *testing.T) {
	tests := []struct {
		name   string
		env    domain.Envelope
		target error
	}{
		{"unknown type", domain.Envelope{Type: "launch-missiles", Payload: json.RawMessage(`{}`)}, ErrUnsupportedEvent},
		{"server-only type", domain.Envelope{Type: domain.EventUserAdded, Payload: json.RawMessage(`{}`)}, ErrUnsupportedEvent},
		{"empty message", domain.Envelope{Type: domain.EventProjectMessage, Payload: json.RawMessage(`{"message":""}`)}, ErrInvalidPayload},
		{"missing payload", domain.Envelope{Type: domain.EventProjectMessage}, ErrInvalidPayload},
		{"malformed payload", domain.Envelope{Type: domain.EventFileUpdated, Payload: json.RawMessage(`{"fileTree":[1,2]}`)}, ErrInvalidPayload},
		{"missing tree", domain.Envelope{Type: domain.EventFileUpdated, Payload: json.RawMessage(`{}`)}, ErrInvalidPayload},
		{"bad email", domain.Envelope{Type: domain.EventAddCollaborator, Payload: json.RawMessage(`{"email":"nope"}`)}, ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ws, _, _, b := newTestWorkspace(t)

			err := ws.HandleEvent(context.Background(), testParticipant(), tt.env)
			req.ErrorIs(err, tt.target)

			var eventErr *EventError
			req.ErrorAs(err, &eventErr)
			req.NotEmpty(eventErr.Text)
			req.Empty(b.all(), "rejected events reach nobody")
		})
	}
}
