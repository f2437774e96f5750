package connections

import (
	"context"
	"sync"
	"time"

	"github.com/deepgram/aireply/internal/services/presentation"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types pushed to connected host clients
const (
	EventConnected = "connected"
	EventEphemeral = "ephemeral_message"
	EventInsert    = "insert_text"
	EventNotice    = "notice"
)

// Event is one presentation instruction for the host UI
type Event struct {
	Type      string                         `json:"type"`
	ChannelID string                         `json:"channel_id,omitempty"`
	Message   *presentation.EphemeralMessage `json:"message,omitempty"`
	Text      string                         `json:"text,omitempty"`
	Notice    *presentation.Notice           `json:"notice,omitempty"`
}

// TimeoutConfig holds the various timeout settings for WebSocket connections
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PongWait:   30 * time.Second,
	PingPeriod: 27 * time.Second, // (PongWait * 9) / 10
	WriteWait:  10 * time.Second,
}

// Client is a connected host UI. Writes are serialised because a
// websocket.Conn supports only one concurrent writer.
type Client struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	writeWait time.Duration
}

func NewClient(conn *websocket.Conn, writeWait time.Duration) *Client {
	return &Client{conn: conn, writeWait: writeWait}
}

// Send writes one event as JSON
func (c *Client) Send(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(event)
}

// Ping writes a ping control frame
func (c *Client) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait))
}

// Manager tracks connected host clients and fans presentation events out to
// them. It is the websocket implementation of presentation.Presenter.
type Manager struct {
	clients  sync.Map
	timeouts TimeoutConfig
}

// NewManager creates a new connection manager with the specified timeouts
func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		timeouts: timeouts,
	}
}

// AddClient registers a connected host client
func (m *Manager) AddClient(client *Client) {
	m.clients.Store(client, struct{}{})
}

// RemoveClient forgets a host client
func (m *Manager) RemoveClient(client *Client) {
	m.clients.Delete(client)
}

// HasClient checks if a specific client is registered
func (m *Manager) HasClient(client *Client) bool {
	_, exists := m.clients.Load(client)
	return exists
}

// GetConnectionCount returns the current number of connected clients
func (m *Manager) GetConnectionCount() int {
	count := 0
	m.clients.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}

// GetTimeouts returns the current timeout configuration
func (m *Manager) GetTimeouts() TimeoutConfig {
	return m.timeouts
}

// Broadcast sends event to every client and returns how many received it.
// Clients that fail to receive are dropped.
func (m *Manager) Broadcast(event Event) int {
	delivered := 0
	m.clients.Range(func(key, value interface{}) bool {
		client := key.(*Client)
		if err := client.Send(event); err != nil {
			log.Warn().Err(err).Str("event", event.Type).Msg("Dropping host client after failed write")
			m.RemoveClient(client)
			client.conn.Close()
			return true
		}
		delivered++
		return true
	})

	if delivered == 0 {
		log.Warn().
			Str("event", event.Type).
			Str("channel_id", event.ChannelID).
			Msg("No host client connected - event dropped")
	}
	return delivered
}

func (m *Manager) SendEphemeral(ctx context.Context, msg presentation.EphemeralMessage) error {
	m.Broadcast(Event{Type: EventEphemeral, ChannelID: msg.ChannelID, Message: &msg})
	return nil
}

func (m *Manager) InsertText(ctx context.Context, channelID, text string) error {
	m.Broadcast(Event{Type: EventInsert, ChannelID: channelID, Text: text})
	return nil
}

func (m *Manager) Notify(ctx context.Context, channelID string, notice presentation.Notice) error {
	m.Broadcast(Event{Type: EventNotice, ChannelID: channelID, Notice: &notice})
	return nil
}
