package broadcast

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/typetest/internal/session"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", n, h.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubSendsLatestThenUpdates(t *testing.T) {
	hub := NewHub(nil)
	hub.Show(session.Snapshot{State: session.Running, Remaining: 42, Duration: 60})

	srv := httptest.NewServer(Handler(hub))
	defer srv.Close()
	conn := dial(t, srv.URL)

	first := readMessage(t, conn)
	if first.Type != "snapshot" || first.Data.Remaining != 42 {
		t.Fatalf("unexpected first message: %+v", first)
	}

	waitForClients(t, hub, 1)
	hub.Show(session.Snapshot{State: session.Running, Remaining: 41, WPM: 33})
	next := readMessage(t, conn)
	if next.Data.Remaining != 41 || next.Data.WPM != 33 {
		t.Fatalf("unexpected update: %+v", next)
	}
}

func TestSnapshotStateEncodesByName(t *testing.T) {
	payload, err := json.Marshal(Message{Type: "snapshot", Data: session.Snapshot{State: session.Finished}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(payload), `"state":"finished"`) {
		t.Fatalf("expected named state in %s", payload)
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(Handler(hub))
	defer srv.Close()

	conn := dial(t, srv.URL)
	waitForClients(t, hub, 1)
	_ = conn.Close()
	waitForClients(t, hub, 0)
	hub.Show(session.Snapshot{State: session.Idle})
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, hub)
	}()

	conn := dial(t, "http://"+ln.Addr().String())
	waitForClients(t, hub, 1)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not stop")
	}
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection to be closed")
	}
}
