package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

// dial connects a client subscribed to sessionID through a test server
func dial(t *testing.T, hub *Hub, sessionID uuid.UUID) *websocket.Conn {
	t.Helper()
	return dialAs(t, hub, sessionID, uuid.New())
}

func dialAs(t *testing.T, hub *Hub, sessionID, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	upgrader := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(&upgrader, w, r, sessionID, userID)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishReachesSessionSubscribers(t *testing.T) {
	hub, _ := startHub(t)
	sessionID, otherID := uuid.New(), uuid.New()

	conn := dial(t, hub, sessionID)
	other := dial(t, hub, otherID)
	require.Eventually(t, func() bool {
		return hub.ClientsCount(sessionID) == 1 && hub.ClientsCount(otherID) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(sessionID, EventMessageCreated, map[string]string{"message": "hi"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type      string            `json:"type"`
		SessionID uuid.UUID         `json:"session_id"`
		Data      map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, EventMessageCreated, event.Type)
	assert.Equal(t, sessionID, event.SessionID)
	assert.Equal(t, "hi", event.Data["message"])

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "subscribers of another session must not receive the event")
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub, _ := startHub(t)
	sessionID := uuid.New()

	conn := dial(t, hub, sessionID)
	require.Eventually(t, func() bool { return hub.ClientsCount(sessionID) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientsCount(sessionID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub, cancel := startHub(t)
	sessionID := uuid.New()

	conn := dial(t, hub, sessionID)
	require.Eventually(t, func() bool { return hub.ClientsCount(sessionID) == 1 }, time.Second, 10*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// A stopped hub neither blocks nor counts
	hub.Publish(sessionID, EventMessageDeleted, nil)
	assert.Equal(t, 0, hub.ClientsCount(sessionID))
}

func TestHub_DisconnectDropsOnlyThatUser(t *testing.T) {
	hub, _ := startHub(t)
	sessionID, leaver, stayer := uuid.New(), uuid.New(), uuid.New()

	gone := dialAs(t, hub, sessionID, leaver)
	kept := dialAs(t, hub, sessionID, stayer)
	require.Eventually(t, func() bool { return hub.ClientsCount(sessionID) == 2 }, time.Second, 10*time.Millisecond)

	hub.Disconnect(sessionID, leaver)
	assert.Equal(t, 1, hub.ClientsCount(sessionID))

	require.NoError(t, gone.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := gone.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "got %v", err)

	hub.Publish(sessionID, EventMessageCreated, map[string]string{"message": "still here"})
	require.NoError(t, kept.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := kept.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "still here")
}

func TestHub_CloseSession(t *testing.T) {
	hub, _ := startHub(t)
	sessionID, otherID := uuid.New(), uuid.New()

	first := dial(t, hub, sessionID)
	second := dial(t, hub, sessionID)
	dial(t, hub, otherID)
	require.Eventually(t, func() bool {
		return hub.ClientsCount(sessionID) == 2 && hub.ClientsCount(otherID) == 1
	}, time.Second, 10*time.Millisecond)

	hub.CloseSession(sessionID)
	assert.Equal(t, 0, hub.ClientsCount(sessionID))
	assert.Equal(t, 1, hub.ClientsCount(otherID))

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, _, err := conn.ReadMessage()
		assert.Error(t, err)
	}
}

func TestNewUpgrader_CheckOrigin(t *testing.T) {
	upgrader := NewUpgrader([]string{"http://localhost:3000"})

	for origin, want := range map[string]bool{
		"":                      true,
		"http://localhost:3000": true,
		"http://evil.test":      false,
	} {
		r := httptest.NewRequest(http.MethodGet, "/chat/x/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		assert.Equal(t, want, upgrader.CheckOrigin(r), origin)
	}
}
