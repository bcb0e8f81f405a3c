// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// serveHub starts an HTTP server that upgrades every request and registers
// the connection with hub.
func serveHub(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn)
		client.Enqueue(Message{Type: "welcome"})
		hub.Register <- client
		client.Start()
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", data, err)
	}
	return msg
}

func TestClient_ReceivesEnqueuedAndBroadcastMessages(t *testing.T) {
	hub := NewHub(DefaultConfig())
	runHub(t, hub)
	conn := dial(t, serveHub(t, hub))

	if msg := readMessage(t, conn); msg["type"] != "welcome" {
		t.Errorf("first message = %v, want welcome", msg)
	}

	waitForClients(t, hub, 1)
	hub.BroadcastJSON(MessageTypeSnapshotUpdated, map[string]int{"version": 3})

	msg := readMessage(t, conn)
	if msg["type"] != MessageTypeSnapshotUpdated {
		t.Fatalf("message = %v", msg)
	}
	data, _ := msg["data"].(map[string]any)
	if data["version"] != float64(3) {
		t.Errorf("version = %v, want 3", data["version"])
	}
}

func TestClient_PingPong(t *testing.T) {
	hub := NewHub(DefaultConfig())
	runHub(t, hub)
	conn := dial(t, serveHub(t, hub))
	_ = readMessage(t, conn)

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if msg := readMessage(t, conn); msg["type"] != MessageTypePong {
		t.Errorf("reply = %v, want pong", msg)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub := NewHub(DefaultConfig())
	runHub(t, hub)
	conn := dial(t, serveHub(t, hub))
	_ = readMessage(t, conn)
	waitForClients(t, hub, 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
	waitForClients(t, hub, 0)
}

func TestClient_ClosedByHubShutdown(t *testing.T) {
	hub := NewHub(DefaultConfig())
	cancel := runHub(t, hub)
	conn := dial(t, serveHub(t, hub))
	_ = readMessage(t, conn)
	waitForClients(t, hub, 1)

	cancel()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to close after hub shutdown")
	}
}
