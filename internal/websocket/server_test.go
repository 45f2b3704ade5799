package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/goleak"

	"github.com/skysar/sarplan/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func dialTestServer(t *testing.T, srv *Server) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleConnection))
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		ts.Close()
		t.Fatalf("dial failed: %v", err)
	}
	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func TestBroadcastReachesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer(logger.NewNop())
	go srv.Run(ctx)

	conn, cleanup := dialTestServer(t, srv)
	defer cleanup()

	// Registration happens on the hub goroutine; wait for it
	waitForClients(t, srv, 1)

	srv.Broadcast(&Message{
		Type: MessageTypePlanCreated,
		Data: map[string]any{"id": float64(7)},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if msg.Type != MessageTypePlanCreated {
		t.Errorf("message type = %q, want %q", msg.Type, MessageTypePlanCreated)
	}
	if msg.Data["id"] != float64(7) {
		t.Errorf("message data = %v", msg.Data)
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer(logger.NewNop())
	go srv.Run(ctx)

	conn, cleanup := dialTestServer(t, srv)
	waitForClients(t, srv, 1)

	conn.Close()
	waitForClients(t, srv, 0)
	cleanup()
}

func TestShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	srv := NewServer(logger.NewNop())
	go srv.Run(ctx)

	conn, cleanup := dialTestServer(t, srv)
	defer cleanup()
	waitForClients(t, srv, 1)

	cancel()

	// The hub closes the connection; the client read unblocks with an error
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected read error after hub shutdown")
	}

	// Broadcast after shutdown must not block
	done := make(chan struct{})
	go func() {
		srv.Broadcast(&Message{Type: MessageTypePlanFailed, Data: map[string]any{}})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Broadcast blocked after shutdown")
	}
}

func TestMessageHandlerInvoked(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer(logger.NewNop())
	received := make(chan string, 1)
	srv.SetMessageHandler(handlerFunc(func(c *Client, messageType string, data map[string]any) error {
		received <- messageType
		return nil
	}))
	go srv.Run(ctx)

	conn, cleanup := dialTestServer(t, srv)
	defer cleanup()
	waitForClients(t, srv, 1)

	err := conn.WriteJSON(Message{Type: MessageTypePlansRequest, Data: map[string]any{}})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case got := <-received:
		if got != MessageTypePlansRequest {
			t.Errorf("handler got type %q, want %q", got, MessageTypePlansRequest)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never invoked")
	}
}

type handlerFunc func(*Client, string, map[string]any) error

func (f handlerFunc) HandleMessage(c *Client, messageType string, data map[string]any) error {
	return f(c, messageType, data)
}

func waitForClients(t *testing.T, srv *Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if srv.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d (now %d)", want, srv.ClientCount())
}
