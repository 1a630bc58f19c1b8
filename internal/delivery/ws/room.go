package ws

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

// ErrAlreadyJoined is returned when a connection joins a room twice
var ErrAlreadyJoined = errors.New("connection already joined a room")

// Room is the live session of one project
type Room struct {
	ID  string // project id
	Hub *Hub
}

// RoomStats is a point-in-time view of a room for the status page
type RoomStats struct {
	ID           string
	Participants int
}

// RoomManager manages all active rooms. Rooms are created by the first
// join and destroyed when their last participant leaves; both happen under
// the manager lock so a join can never land in a room being torn down.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room // map[projectID]*Room
	log   *slog.Logger
}

// NewRoomManager creates a new room manager
func NewRoomManager(log *slog.Logger) *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*Room),
		log:   log,
	}
}

// Join inserts the client into the room of its participant, creating the
// room if needed, then announces user-joined to the whole room.
func (rm *RoomManager) Join(c *Client) (*Room, error) {
	roomID := c.Participant.RoomID

	rm.mu.Lock()
	room, ok := rm.rooms[roomID]
	if !ok {
		hub := NewHub(roomID, rm.log.With("project_id", roomID))
		room = &Room{ID: roomID, Hub: hub}
		rm.rooms[roomID] = room
		go hub.Run()
		rm.log.Debug("Room created", "project_id", roomID)
	}
	if !room.Hub.add(c) {
		rm.mu.Unlock()
		return nil, ErrAlreadyJoined
	}
	rm.mu.Unlock()

	rm.log.Info("Participant joined",
		"project_id", roomID,
		"user_id", c.Participant.User.ID,
		"conn_id", c.Participant.ConnID,
	)
	rm.announce(room, domain.EventUserJoined, c.Participant.User)
	return room, nil
}

// Leave removes the client from its room. The room is destroyed when it
// becomes empty; otherwise the others are told with user-left. Calling
// Leave for a client that is no longer a member does nothing.
func (rm *RoomManager) Leave(c *Client) {
	roomID := c.Participant.RoomID

	rm.mu.Lock()
	room, ok := rm.rooms[roomID]
	if !ok || !room.Hub.remove(c) {
		rm.mu.Unlock()
		return
	}
	empty := room.Hub.ClientCount() == 0
	if empty {
		delete(rm.rooms, roomID)
		room.Hub.Stop()
	}
	rm.mu.Unlock()

	rm.log.Info("Participant left",
		"project_id", roomID,
		"user_id", c.Participant.User.ID,
		"conn_id", c.Participant.ConnID,
	)
	if empty {
		rm.log.Debug("Room destroyed", "project_id", roomID)
		return
	}
	rm.announce(room, domain.EventUserLeft, c.Participant.User)
}

func (rm *RoomManager) announce(room *Room, eventType domain.EventType, user domain.User) {
	data, err := buildMemberEvent(eventType, user)
	if err != nil {
		rm.log.Error("Encode member event", "type", eventType, "error", err)
		return
	}
	room.Hub.Broadcast(data, "")
}

// Broadcast delivers env to the room's participants except excludeConnID.
// It reports false when the room does not exist (anymore).
func (rm *RoomManager) Broadcast(roomID string, env domain.Envelope, excludeConnID string) bool {
	room := rm.GetRoom(roomID)
	if room == nil {
		return false
	}
	data, err := env.Encode()
	if err != nil {
		rm.log.Error("Encode envelope", "type", env.Type, "error", err)
		return false
	}
	return room.Hub.Broadcast(data, excludeConnID)
}

// SendTo delivers env to one participant of the room
func (rm *RoomManager) SendTo(roomID, connID string, env domain.Envelope) bool {
	room := rm.GetRoom(roomID)
	if room == nil {
		return false
	}
	data, err := env.Encode()
	if err != nil {
		rm.log.Error("Encode envelope", "type", env.Type, "error", err)
		return false
	}
	return room.Hub.SendTo(connID, data)
}

// GetRoom returns a room by its project id
func (rm *RoomManager) GetRoom(roomID string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[roomID]
}

// RoomExists checks if a room is live
func (rm *RoomManager) RoomExists(roomID string) bool {
	return rm.GetRoom(roomID) != nil
}

// GetRoomCount returns the number of active rooms
func (rm *RoomManager) GetRoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// Stats lists the active rooms ordered by project id
func (rm *RoomManager) Stats() []RoomStats {
	rm.mu.RLock()
	stats := make([]RoomStats, 0, len(rm.rooms))
	for id, room := range rm.rooms {
		stats = append(stats, RoomStats{ID: id, Participants: room.Hub.ClientCount()})
	}
	rm.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool { return stats[i].ID < stats[j].ID })
	return stats
}

// Shutdown stops every room and disconnects every client
func (rm *RoomManager) Shutdown() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for id, room := range rm.rooms {
		room.Hub.Stop()
		delete(rm.rooms, id)
	}
}
