package connections

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deepgram/aireply/internal/services/presentation"
	"github.com/gorilla/websocket"
)

func TestManager(t *testing.T) {
	// Create a context with timeout for the entire test
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("basic add and remove client", func(t *testing.T) {
		manager := NewManager(DefaultTimeouts)

		client := NewClient(&websocket.Conn{}, DefaultTimeouts.WriteWait)

		manager.AddClient(client)
		if !manager.HasClient(client) {
			t.Error("Client not found after adding")
		}

		manager.RemoveClient(client)
		if manager.HasClient(client) {
			t.Error("Client still exists after removal")
		}
	})

	t.Run("concurrent client operations", func(t *testing.T) {
		manager := NewManager(DefaultTimeouts)
		concurrentOps := 100
		var wg sync.WaitGroup
		wg.Add(concurrentOps)

		clients := make([]*Client, concurrentOps)
		for i := 0; i < concurrentOps; i++ {
			clients[i] = NewClient(&websocket.Conn{}, DefaultTimeouts.WriteWait)
		}

		for i := 0; i < concurrentOps; i++ {
			go func(client *Client) {
				defer wg.Done()
				select {
				case <-ctx.Done():
					return
				default:
					manager.AddClient(client)
				}
			}(clients[i])
		}

		// Wait with timeout
		waitCh := make(chan struct{})
		go func() {
			wg.Wait()
			close(waitCh)
		}()

		select {
		case <-ctx.Done():
			t.Fatal("Test timed out")
		case <-waitCh:
		}

		if got := manager.GetConnectionCount(); got != concurrentOps {
			t.Errorf("Expected %d clients, got %d", concurrentOps, got)
		}

		for _, client := range clients {
			manager.RemoveClient(client)
		}
		if got := manager.GetConnectionCount(); got != 0 {
			t.Errorf("Expected 0 clients after cleanup, got %d", got)
		}
	})

	t.Run("memory leak check", func(t *testing.T) {
		manager := NewManager(DefaultTimeouts)
		iterations := 1000

		var m1, m2 runtime.MemStats
		runtime.GC()
		runtime.ReadMemStats(&m1)

		for i := 0; i < iterations; i++ {
			client := NewClient(&websocket.Conn{}, DefaultTimeouts.WriteWait)
			manager.AddClient(client)
			manager.RemoveClient(client)
		}

		runtime.GC()
		runtime.ReadMemStats(&m2)

		var memoryGrowth int64
		if m2.HeapAlloc >= m1.HeapAlloc {
			memoryGrowth = int64(m2.HeapAlloc - m1.HeapAlloc)
		} else {
			memoryGrowth = -int64(m1.HeapAlloc - m2.HeapAlloc)
		}

		maxAcceptableGrowth := int64(iterations * 1024) // 1KB per iteration
		if memoryGrowth > maxAcceptableGrowth {
			t.Errorf("Possible memory leak detected: memory growth of %d bytes exceeds threshold of %d bytes",
				memoryGrowth, maxAcceptableGrowth)
		}
	})

	t.Run("broadcast with no clients drops the event", func(t *testing.T) {
		manager := NewManager(DefaultTimeouts)
		if got := manager.Broadcast(Event{Type: EventNotice}); got != 0 {
			t.Errorf("Expected 0 deliveries, got %d", got)
		}
		if err := manager.InsertText(ctx, "c1", "hello"); err != nil {
			t.Errorf("InsertText without clients should not fail: %v", err)
		}
	})
}

func TestManagerDeliversEvents(t *testing.T) {
	manager := NewManager(DefaultTimeouts)
	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn, DefaultTimeouts.WriteWait)
		manager.AddClient(client)
		close(registered)

		// Keep the connection open until the peer goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				manager.RemoveClient(client)
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("Client was not registered")
	}

	ctx := context.Background()
	if err := manager.SendEphemeral(ctx, presentation.EphemeralMessage{ID: "e1", ChannelID: "c1", Content: "hi"}); err != nil {
		t.Fatalf("SendEphemeral failed: %v", err)
	}
	if err := manager.Notify(ctx, "c1", presentation.Notice{Level: presentation.LevelWarning, Message: "careful"}); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first Event
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	if first.Type != EventEphemeral || first.Message == nil || first.Message.Content != "hi" {
		t.Errorf("Unexpected first event: %+v", first)
	}

	var second Event
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	if second.Type != EventNotice || second.Notice == nil || second.Notice.Message != "careful" {
		t.Errorf("Unexpected second event: %+v", second)
	}
}
