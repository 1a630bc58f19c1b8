package ws

import (
	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

// buildMemberEvent encodes a user-joined / user-left / user-added frame
func buildMemberEvent(eventType domain.EventType, user domain.User) ([]byte, error) {
	env, err := domain.NewEnvelope(eventType, domain.MemberPayload{User: user})
	if err != nil {
		return nil, err
	}
	return env.Encode()
}

// buildMessage encodes a chat line addressed to the room or a single client
func buildMessage(m domain.Message) ([]byte, error) {
	env, err := domain.MessageEnvelope(m)
	if err != nil {
		return nil, err
	}
	return env.Encode()
}
