package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/models"
)

// dialFixture serves the fixture's hub over a real websocket so the read
// limit and pumps are exercised end to end.
func dialFixture(t *testing.T, f *gatewayFixture, userID string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(f.hub, f.gateway, conn, userID)
		f.hub.Register(c)
		go c.WritePump()
		go c.ReadPump()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestReadLimitFitsMaxLengthMultibyteMessage(t *testing.T) {
	f := newGatewayFixture(map[string][]string{"r1": {"alice", "bob"}})
	conn := dialFixture(t, f, "alice")

	// 2000 three-byte runes: valid content, but a frame well past 4 KiB
	content := strings.Repeat("€", models.MaxMessageLength)
	require.NoError(t, conn.WriteJSON(ClientEvent{Type: EventJoinRoom, RoomID: "r1"}))
	require.NoError(t, conn.WriteJSON(ClientEvent{Type: EventSendMessage, RoomID: "r1", Content: content}))

	// the broadcast coming back proves the frame was dispatched, not cut off
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventNewMessage, ev.Type)

	f.messaging.mu.Lock()
	defer f.messaging.mu.Unlock()
	require.Len(t, f.messaging.sent, 1)
	assert.Equal(t, content, f.messaging.sent[0])
}
