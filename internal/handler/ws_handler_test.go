package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"dmline/internal/app/chat"
	"dmline/internal/app/store"
)

type wsEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// wsEnv runs the full router on a live listener so real WebSocket
// connections can be dialed against it.
type wsEnv struct {
	*testEnv
	server *httptest.Server
}

func newWSEnv(t *testing.T) *wsEnv {
	t.Helper()

	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	t.Cleanup(server.Close)

	return &wsEnv{testEnv: env, server: server}
}

func (env *wsEnv) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws?token=" + url.QueryEscape(token)

	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	res.Body.Close()

	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForCondition(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func readWSEvent(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var evt wsEvent
	require.NoError(t, json.Unmarshal(frame, &evt))
	return evt
}

// connect dials a connection for the user and drains its admission frames.
func (env *wsEnv) connect(t *testing.T, userID, email string) *websocket.Conn {
	t.Helper()

	token := env.login(t, userID, email)
	conn := env.dial(t, token)

	evt := readWSEvent(t, conn)
	require.Equal(t, chat.EventUserOnline, evt.Name)

	evt = readWSEvent(t, conn)
	require.Equal(t, chat.EventUsersOnline, evt.Name)

	return conn
}

func TestWebSocketPresenceLifecycle(t *testing.T) {
	t.Parallel()

	env := newWSEnv(t)
	alice := env.users.add(store.User{Email: "alice@example.com", Name: "Alice"})
	bob := env.users.add(store.User{Email: "bob@example.com", Name: "Bob"})

	aliceConn := env.connect(t, alice.ID, alice.Email)

	bobConn := env.connect(t, bob.ID, bob.Email)

	// alice learns about bob's arrival
	evt := readWSEvent(t, aliceConn)
	require.Equal(t, chat.EventUserOnline, evt.Name)
	require.JSONEq(t, `{"userId": "`+bob.ID+`"}`, string(evt.Data))

	// bob's last connection closing flips him offline for everyone else
	bobConn.Close()

	evt = readWSEvent(t, aliceConn)
	require.Equal(t, chat.EventUserOffline, evt.Name)
	require.JSONEq(t, `{"userId": "`+bob.ID+`"}`, string(evt.Data))
}

func TestWebSocketSecondConnectionKeepsUserOnline(t *testing.T) {
	t.Parallel()

	env := newWSEnv(t)
	alice := env.users.add(store.User{Email: "alice@example.com", Name: "Alice"})
	bob := env.users.add(store.User{Email: "bob@example.com", Name: "Bob"})

	aliceConn := env.connect(t, alice.ID, alice.Email)

	bobFirst := env.connect(t, bob.ID, bob.Email)
	evt := readWSEvent(t, aliceConn)
	require.Equal(t, chat.EventUserOnline, evt.Name)

	bobSecond := env.connect(t, bob.ID, bob.Email)
	evt = readWSEvent(t, aliceConn)
	require.Equal(t, chat.EventUserOnline, evt.Name)
	_ = readWSEvent(t, bobFirst) // bob's own second arrival echo

	// dropping one of two connections must not flip bob offline
	bobFirst.Close()
	waitForCondition(t, func() bool {
		return len(env.deps.Hub.Registry().HandlesFor(bob.ID)) == 1
	}, "first bob connection not removed from registry")
	require.True(t, env.deps.Hub.Registry().IsOnline(bob.ID))

	bobSecond.Close()

	evt = readWSEvent(t, aliceConn)
	require.Equal(t, chat.EventUserOffline, evt.Name)
}

func TestWebSocketMessageDelivery(t *testing.T) {
	t.Parallel()

	env := newWSEnv(t)
	alice := env.users.add(store.User{Email: "alice@example.com", Name: "Alice"})
	bob := env.users.add(store.User{Email: "bob@example.com", Name: "Bob"})

	aliceConn := env.connect(t, alice.ID, alice.Email)
	bobConn := env.connect(t, bob.ID, bob.Email)
	_ = readWSEvent(t, aliceConn) // bob's user:online

	token := env.login(t, alice.ID, alice.Email)
	rr, _ := env.do(t, http.MethodPost, "/api/messages/", token, map[string]string{
		"receiverId": bob.ID,
		"content":    "hello bob",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	// the receiver gets message:receive, the sender's own connection message:sent
	evt := readWSEvent(t, bobConn)
	require.Equal(t, chat.EventMessageReceive, evt.Name)

	var delivered store.Message
	require.NoError(t, json.Unmarshal(evt.Data, &delivered))
	require.Equal(t, "hello bob", delivered.Content)
	require.Equal(t, alice.ID, delivered.SenderID)

	evt = readWSEvent(t, aliceConn)
	require.Equal(t, chat.EventMessageSent, evt.Name)
}

func TestWebSocketTypingRelay(t *testing.T) {
	t.Parallel()

	env := newWSEnv(t)
	alice := env.users.add(store.User{Email: "alice@example.com", Name: "Alice"})
	bob := env.users.add(store.User{Email: "bob@example.com", Name: "Bob"})

	aliceConn := env.connect(t, alice.ID, alice.Email)
	bobConn := env.connect(t, bob.ID, bob.Email)
	_ = readWSEvent(t, aliceConn) // bob's user:online

	frame := `{"event": "typing:start", "data": {"receiverId": "` + bob.ID + `"}}`
	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(frame)))

	evt := readWSEvent(t, bobConn)
	require.Equal(t, chat.EventTypingStart, evt.Name)
	require.JSONEq(t, `{"userId": "`+alice.ID+`"}`, string(evt.Data))

	frame = `{"event": "typing:stop", "data": {"receiverId": "` + bob.ID + `"}}`
	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(frame)))

	evt = readWSEvent(t, bobConn)
	require.Equal(t, chat.EventTypingStop, evt.Name)
}

func TestWebSocketRejectsBadHandshake(t *testing.T) {
	t.Parallel()

	env := newWSEnv(t)
	alice := env.users.add(store.User{Email: "alice@example.com", Name: "Alice"})

	base := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"

	// missing token
	_, res, err := websocket.DefaultDialer.Dial(base, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res.Body.Close()

	// garbage token
	_, res, err = websocket.DefaultDialer.Dial(base+"?token=garbage", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res.Body.Close()

	// valid JWT with a revoked session
	token := env.login(t, alice.ID, alice.Email)
	require.NoError(t, env.sessions.DeleteByToken(t.Context(), token))

	_, res, err = websocket.DefaultDialer.Dial(base+"?token="+url.QueryEscape(token), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res.Body.Close()
}

func TestWebSocketClosesWhenUserVanished(t *testing.T) {
	t.Parallel()

	env := newWSEnv(t)

	// token and session are valid but the account row is gone
	token := env.login(t, "deleted-user", "gone@example.com")
	conn := env.dial(t, token)

	evt := readWSEvent(t, conn)
	require.Equal(t, chat.EventAuthError, evt.Name)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, 4004), "expected close code 4004, got %v", err)

	// the rejected connection never reached the registry
	require.False(t, env.deps.Hub.Registry().IsOnline("deleted-user"))
}
