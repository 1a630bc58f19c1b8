package usecase

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

const testRoomID = "6f1c2f7e-3f5b-4a4e-9a0e-2b1d7c9e8a10"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testParticipant() domain.Participant {
	return domain.NewParticipant(domain.User{ID: "u-alice", Email: "alice@example.com"}, testRoomID)
}

type broadcast struct {
	roomID  string
	env     domain.Envelope
	exclude string
}

// recordingBroadcaster keeps every broadcast in submission order
type recordingBroadcaster struct {
	mu     sync.Mutex
	sent   []broadcast
	closed bool
}

func (b *recordingBroadcaster) Broadcast(roomID string, env domain.Envelope, excludeConnID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.sent = append(b.sent, broadcast{roomID: roomID, env: env, exclude: excludeConnID})
	return true
}

func (b *recordingBroadcaster) all() []broadcast {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]broadcast(nil), b.sent...)
}

func chatPayload(t *testing.T, env domain.Envelope) domain.ChatPayload {
	t.Helper()
	require.Equal(t, domain.EventProjectMessage, env.Type)
	var payload domain.ChatPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	return payload
}
