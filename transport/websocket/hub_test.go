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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/gridball/game/engine"
	"github.com/wricardo/gridball/game/service"
)

func testState() *engine.GameState {
	return &engine.GameState{
		ConfigName: "test",
		Mode:       "player_selected",
		Columns:    3,
		Rows:       3,
		Actors:     []engine.ActorView{{ID: "runner", Name: "Runner", X: 30, Y: 60}},
		SelectedID: "runner",
		SelectedRange: []engine.Space{
			{Column: 0, Row: 1},
			{Column: 1, Row: 2},
		},
		CanClick: true,
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.done
	})
	return hub
}

// waitForClients polls until the session has n clients
func waitForClients(t *testing.T, hub *Hub, sessionID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := hub.ClientCount(context.Background(), sessionID)
		require.NoError(t, err)
		if got == n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients in session %s, got %d", n, sessionID, got)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newTestServer(t *testing.T, hub *Hub, initial *engine.GameState) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID, initial)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?" + query
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}
	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}
	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
		encoding:  EncodingJSON,
	}

	hub.registerClient(client)

	if _, exists := hub.sessions["test-session"]; !exists {
		t.Error("Session was not created")
	}
	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected send channel to be closed")
	}
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	client2 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastMessageEncodings(t *testing.T) {
	hub := NewHub()
	sessionID := "broadcast-test"

	jsonClient := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 1), encoding: EncodingJSON}
	packClient := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 1), encoding: EncodingMsgpack}
	other := &Client{hub: hub, sessionID: "other", send: make(chan []byte, 1), encoding: EncodingJSON}
	hub.registerClient(jsonClient)
	hub.registerClient(packClient)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{
		SessionID: sessionID,
		Event:     EventStateUpdate,
		GameState: testState(),
		Events:    []service.GameEvent{{Type: "selected", ActorID: "runner", Frame: 4}},
	})

	for _, client := range []*Client{jsonClient, packClient} {
		select {
		case data := <-client.send:
			message, err := Decode(data, client.encoding)
			require.NoError(t, err, client.encoding)
			assert.Equal(t, sessionID, message.SessionID)
			assert.Equal(t, EventStateUpdate, message.Event)
			require.NotNil(t, message.GameState)
			assert.Equal(t, "player_selected", message.GameState.Mode)
			assert.Equal(t, testState().SelectedRange, message.GameState.SelectedRange)
			require.Len(t, message.Events, 1)
			assert.Equal(t, "runner", message.Events[0].ActorID)
		default:
			t.Errorf("No %s message queued", client.encoding)
		}
	}

	assert.Empty(t, other.send, "other sessions receive nothing")
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte, 1), encoding: EncodingJSON}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: EventStateUpdate})
	hub.broadcastMessage(&Message{SessionID: "slow", Event: EventStateUpdate})

	if _, exists := hub.sessions["slow"]; exists {
		t.Error("Expected slow client to be dropped when its buffer is full")
	}
}

func TestEncodeDecode(t *testing.T) {
	msg := &Message{SessionID: "abcd", Event: EventSessionClosed, Data: "bye"}

	tests := []struct {
		encoding string
		wantErr  bool
	}{
		{EncodingJSON, false},
		{EncodingMsgpack, false},
		{"", false},
		{"xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			data, err := Encode(msg, tt.encoding)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%t, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			decoded, err := Decode(data, tt.encoding)
			require.NoError(t, err)
			assert.Equal(t, "abcd", decoded.SessionID)
			assert.Equal(t, "bye", decoded.Data)
		})
	}

	// msgpack keys follow the json tags
	data, err := Encode(msg, EncodingMsgpack)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session_id")
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := startHub(t)
	server := newTestServer(t, hub, nil)

	conn := dial(t, server, "session=ws-test")
	waitForClients(t, hub, "ws-test", 1)

	conn.Close()
	waitForClients(t, hub, "ws-test", 0)
}

func TestWebSocketRejectsUnknownEncoding(t *testing.T) {
	hub := startHub(t)
	server := newTestServer(t, hub, nil)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=x&encoding=xml"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebSocketInitialStateAndBroadcast(t *testing.T) {
	hub := startHub(t)
	server := newTestServer(t, hub, testState())

	conn := dial(t, server, "session=msg-test")

	// the initial state arrives first
	conn.SetReadDeadline(time.Now().Add(time.Second))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)

	var initial Message
	require.NoError(t, json.Unmarshal(data, &initial))
	assert.Equal(t, "msg-test", initial.SessionID)
	assert.Equal(t, "runner", initial.GameState.SelectedID)

	waitForClients(t, hub, "msg-test", 1)

	state := testState()
	state.Mode = "player_moving"
	hub.BroadcastToSession("msg-test", state, []service.GameEvent{{Type: "move_started"}})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)

	var update Message
	require.NoError(t, json.Unmarshal(data, &update))
	assert.Equal(t, "player_moving", update.GameState.Mode)
	require.Len(t, update.Events, 1)
	assert.Equal(t, "move_started", update.Events[0].Type)
}

func TestWebSocketMsgpackFrames(t *testing.T) {
	hub := startHub(t)
	server := newTestServer(t, hub, nil)

	conn := dial(t, server, "session=pack&encoding=msgpack")
	waitForClients(t, hub, "pack", 1)

	hub.BroadcastEvent("pack", EventSessionClosed, "gone")

	conn.SetReadDeadline(time.Now().Add(time.Second))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)

	message, err := Decode(data, EncodingMsgpack)
	require.NoError(t, err)
	assert.Equal(t, EventSessionClosed, message.Event)
	assert.Equal(t, "gone", message.Data)
}
