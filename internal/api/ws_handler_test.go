package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locallift/internal/auth"
	"locallift/internal/tasks"
)

type fakeFeed struct {
	mu       sync.Mutex
	channel  string
	messages chan *redis.Message
	closed   bool
}

func (f *fakeFeed) Messages() <-chan *redis.Message { return f.messages }

func (f *fakeFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeFeed) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newWsServer(t *testing.T, feed *fakeFeed) (*httptest.Server, *auth.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	priv, pub, err := auth.GenerateKeyPair(1024)
	require.NoError(t, err)
	svc, err := auth.NewAuthService(priv, pub, time.Hour)
	require.NoError(t, err)

	h := NewWsHandler(nil, svc, nil, nil)
	if feed != nil {
		h.subscribe = func(_ context.Context, channel string) notifyFeed {
			feed.mu.Lock()
			feed.channel = channel
			feed.mu.Unlock()
			return feed
		}
	}
	router := gin.New()
	router.GET("/ws", h.HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, svc
}

func dialWs(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestWsHandler_RejectsBadToken(t *testing.T) {
	srv, _ := newWsServer(t, &fakeFeed{messages: make(chan *redis.Message)})

	cases := map[string]string{
		"wrong type": `{"type":"hello","token":"x"}`,
		"bad token":  `{"type":"auth","token":"not-a-jwt"}`,
		"not json":   `auth please`,
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			conn := dialWs(t, srv)
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
			_, _, err := conn.ReadMessage()
			var closeErr *websocket.CloseError
			require.ErrorAs(t, err, &closeErr)
			assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
		})
	}
}

func TestWsHandler_ForwardsClientNotifications(t *testing.T) {
	feed := &fakeFeed{messages: make(chan *redis.Message, 1)}
	srv, svc := newWsServer(t, feed)
	token, err := svc.GenerateToken("client-1")
	require.NoError(t, err)

	conn := dialWs(t, srv)
	require.NoError(t, conn.WriteJSON(wsAuthMessage{Type: "auth", Token: token}))

	var ready wsReadyMessage
	require.NoError(t, conn.ReadJSON(&ready))
	assert.Equal(t, wsReadyMessage{Type: "ready", ClientID: "client-1"}, ready)

	feed.mu.Lock()
	assert.Equal(t, tasks.NotifyChannel("client-1"), feed.channel)
	feed.mu.Unlock()

	payload := `{"status":"completed","object_key":"resumes/client-1/resume.pdf"}`
	feed.messages <- &redis.Message{Channel: tasks.NotifyChannel("client-1"), Payload: payload}
	_, got, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(got))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, feed.isClosed, 2*time.Second, 10*time.Millisecond)
}

func TestWsHandler_NoRedisClosesAfterAuth(t *testing.T) {
	srv, svc := newWsServer(t, nil)
	token, err := svc.GenerateToken("client-1")
	require.NoError(t, err)

	conn := dialWs(t, srv)
	require.NoError(t, conn.WriteJSON(wsAuthMessage{Type: "auth", Token: token}))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseTryAgainLater, closeErr.Code)
}

func TestOriginAllowed(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "http://api.local/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}
	assert.True(t, originAllowed(nil, req("")))
	assert.True(t, originAllowed(nil, req("http://api.local")))
	assert.False(t, originAllowed(nil, req("http://evil.test")))
	assert.True(t, originAllowed([]string{"https://app.test"}, req("https://app.test")))
	assert.False(t, originAllowed([]string{"https://app.test"}, req("http://api.local")))
}
