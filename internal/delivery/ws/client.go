package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
	"github.com/mmuslimabdulj/goat-collab/internal/usecase"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10
)

const (
	textInvalidFrame = "Invalid message format."
	textSlowDown     = "You are sending messages too fast. Please slow down."
	textInternal     = "Something went wrong while handling your message."
)

// EventHandler runs the events a participant sends. A returned error is
// reported to that participant only.
type EventHandler interface {
	HandleEvent(ctx context.Context, p domain.Participant, env domain.Envelope) error
}

// ClientOptions tunes a connection
type ClientOptions struct {
	SendBufferSize int
	MaxMessageSize int64

	// MessageRate limits inbound events; zero disables the limit
	MessageRate  rate.Limit
	MessageBurst int
}

// Client represents a single websocket connection
type Client struct {
	Participant domain.Participant

	rooms   *RoomManager
	handler EventHandler
	conn    *websocket.Conn
	send    chan []byte
	joinSeq uint64 // set by Hub.add
	limiter *rate.Limiter
	opts    ClientOptions
	log     *slog.Logger
}

// NewClient creates a new Client for an admitted participant
func NewClient(p domain.Participant, conn *websocket.Conn, rooms *RoomManager, handler EventHandler, opts ClientOptions, log *slog.Logger) *Client {
	if opts.SendBufferSize <= 0 {
		opts.SendBufferSize = domain.SendBufferSize
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = domain.MaxMessageSize
	}

	var limiter *rate.Limiter
	if opts.MessageRate > 0 {
		burst := opts.MessageBurst
		if burst <= 0 {
			burst = int(opts.MessageRate) * 2
		}
		limiter = rate.NewLimiter(opts.MessageRate, max(burst, 1))
	}

	return &Client{
		Participant: p,
		rooms:       rooms,
		handler:     handler,
		conn:        conn,
		send:        make(chan []byte, opts.SendBufferSize),
		limiter:     limiter,
		opts:        opts,
		log:         log.With("conn_id", p.ConnID, "project_id", p.RoomID),
	}
}

// ReadPump pumps messages from the websocket connection to the event
// handler, one at a time and in arrival order.
func (c *Client) ReadPump(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.rooms.Leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("Connection closed", "error", err)
			}
			break
		}
		c.handle(ctx, message)
	}
}

// handle runs one inbound frame. Chat text is never logged.
func (c *Client) handle(ctx context.Context, message []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(message, &env); err != nil || env.Type == "" {
		c.reportError(textInvalidFrame)
		return
	}

	if c.limiter != nil && !c.limiter.Allow() {
		c.log.Debug("Event rate limited", "type", env.Type)
		c.reportError(textSlowDown)
		return
	}

	if err := c.handler.HandleEvent(ctx, c.Participant, env); err != nil {
		var eventErr *usecase.EventError
		if errors.As(err, &eventErr) {
			c.reportError(eventErr.Text)
			return
		}
		c.log.Error("Handle event", "type", env.Type, "error", err)
		c.reportError(textInternal)
	}
}

// reportError sends an ErrorMessage to this client only
func (c *Client) reportError(text string) {
	data, err := buildMessage(domain.ErrorMessage{Text: text})
	if err != nil {
		c.log.Error("Encode error message", "error", err)
		return
	}
	room := c.rooms.GetRoom(c.Participant.RoomID)
	if room == nil {
		return
	}
	room.Hub.SendTo(c.Participant.ConnID, data)
}

// WritePump pumps messages from the hub to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One envelope per websocket message
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
