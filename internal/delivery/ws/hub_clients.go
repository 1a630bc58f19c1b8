package ws

import (
	"sort"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

// add inserts a client. It reports false when the connection is already a member.
func (h *Hub) add(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.Participant.ConnID]; ok {
		return false
	}
	c.joinSeq = h.seq.Load()
	h.clients[c.Participant.ConnID] = c
	return true
}

// remove deletes a client and closes its send queue. It reports false when
// the client was not a member (already removed or never added).
func (h *Hub) remove(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.Participant.ConnID]; !ok {
		return false
	}
	delete(h.clients, c.Participant.ConnID)
	close(c.send)
	return true
}

// Broadcast sends a frame to every client except excludeConnID ("" for everyone)
func (h *Hub) Broadcast(data []byte, excludeConnID string) bool {
	return h.submit(outbound{data: data, exclude: excludeConnID})
}

// SendTo sends a frame to a single client, in order with the room's broadcasts
func (h *Hub) SendTo(connID string, data []byte) bool {
	if connID == "" {
		return false
	}
	return h.submit(outbound{data: data, only: connID})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Participants returns the members of the room ordered by user email
func (h *Hub) Participants() []domain.Participant {
	h.mu.RLock()
	participants := make([]domain.Participant, 0, len(h.clients))
	for _, c := range h.clients {
		participants = append(participants, c.Participant)
	}
	h.mu.RUnlock()

	sort.Slice(participants, func(i, j int) bool {
		if participants[i].User.Email != participants[j].User.Email {
			return participants[i].User.Email < participants[j].User.Email
		}
		return participants[i].ConnID < participants[j].ConnID
	})
	return participants
}
