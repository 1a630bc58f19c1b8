package ws

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

// Hub fans frames out to the clients of one room. Frames are delivered in
// the order they were submitted; a client only receives frames submitted
// while it is a member.
type Hub struct {
	mu      sync.RWMutex
	roomID  string
	clients map[string]*Client

	// seq numbers submitted frames; a client only gets frames numbered
	// after its join
	seq atomic.Uint64

	broadcast chan outbound
	quit      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once

	log *slog.Logger
}

// outbound is one queued frame. exclude skips a connection; only, when
// set, restricts delivery to that single connection.
type outbound struct {
	seq     uint64
	data    []byte
	exclude string
	only    string
}

// NewHub creates a Hub for roomID. Run must be started by the caller.
func NewHub(roomID string, log *slog.Logger) *Hub {
	return &Hub{
		roomID:    roomID,
		clients:   make(map[string]*Client),
		broadcast: make(chan outbound, domain.SendBufferSize),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		log:       log,
	}
}

// Run starts the hub's main event loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case msg := <-h.broadcast:
			h.deliver(msg)
		case <-h.quit:
			return
		}
	}
}

func (h *Hub) deliver(msg outbound) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.only != "" {
		if client, ok := h.clients[msg.only]; ok && msg.seq > client.joinSeq {
			h.enqueue(client, msg.data)
		}
		return
	}

	for id, client := range h.clients {
		if id == msg.exclude || msg.seq <= client.joinSeq {
			continue
		}
		h.enqueue(client, msg.data)
	}
}

// enqueue never blocks the hub: a client whose buffer is full misses the frame.
// Caller must hold at least RLock.
func (h *Hub) enqueue(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.log.Warn("Send buffer full, frame dropped",
			"project_id", h.roomID,
			"conn_id", client.Participant.ConnID,
		)
	}
}

// submit queues msg behind every frame submitted before it. It reports
// false once the hub has been stopped.
func (h *Hub) submit(msg outbound) bool {
	select {
	case <-h.quit:
		return false
	default:
	}

	msg.seq = h.seq.Add(1)
	select {
	case h.broadcast <- msg:
		return true
	case <-h.quit:
		return false
	}
}

// Stop ends Run and disconnects every remaining client
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.quit)
		<-h.done

		h.mu.Lock()
		defer h.mu.Unlock()
		for id, client := range h.clients {
			close(client.send)
			delete(h.clients, id)
		}
	})
}
