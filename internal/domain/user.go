package domain

import (
	"github.com/google/uuid"
)

// User is the public identity of a workspace member. It never carries
// credentials and is what other room members get to see.
type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// Participant is one admitted, live connection inside a room.
// It is built once at admission and never mutated afterwards; the room
// owns membership, the participant only remembers which room it is in.
type Participant struct {
	ConnID string
	User   User
	RoomID string
}

// NewParticipant creates a Participant with a fresh connection ID
func NewParticipant(user User, roomID string) Participant {
	return Participant{
		ConnID: uuid.New().String(),
		User:   user,
		RoomID: roomID,
	}
}
