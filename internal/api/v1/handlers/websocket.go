package handlers

import (
	"net/http"
	"time"

	"github.com/deepgram/aireply/internal/connections"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	// The bridge binds to localhost and the host client's origin varies by build
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket registers a host client for presentation events and keeps
// the connection alive until the client goes away
func HandleWebSocket(manager *connections.Manager, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	timeouts := manager.GetTimeouts()
	client := connections.NewClient(conn, timeouts.WriteWait)

	if err := client.Send(connections.Event{Type: connections.EventConnected}); err != nil {
		log.Warn().Err(err).Msg("Failed to greet host client")
		return
	}

	manager.AddClient(client)
	defer manager.RemoveClient(client)

	log.Info().
		Str("remote_addr", r.RemoteAddr).
		Int("connections", manager.GetConnectionCount()).
		Msg("Host client connected")

	conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(timeouts.PingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := client.Ping(); err != nil {
					return
				}
			}
		}
	}()

	// Inbound frames carry nothing; reading drives pong handling and close detection
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Host client connection closed unexpectedly")
			}
			break
		}
	}

	log.Info().Str("remote_addr", r.RemoteAddr).Msg("Host client disconnected")
}
