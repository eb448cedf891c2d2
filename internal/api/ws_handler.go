package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"locallift/internal/api/middleware"
	"locallift/internal/auth"
	"locallift/internal/tasks"
)

const (
	wsAuthTimeout  = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 5 * time.Second
)

// notifyFeed is a subscription to one client's notification channel.
type notifyFeed interface {
	Messages() <-chan *redis.Message
	Close() error
}

type pubsubFeed struct {
	ps *redis.PubSub
}

func (f pubsubFeed) Messages() <-chan *redis.Message { return f.ps.Channel() }
func (f pubsubFeed) Close() error                    { return f.ps.Close() }

// WsHandler pushes PDF notifications to a client over a websocket. The first
// frame must be {"type":"auth","token":...}; after that the client only
// receives.
type WsHandler struct {
	subscribe   func(ctx context.Context, channel string) notifyFeed
	authService *auth.AuthService
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

func NewWsHandler(redisClient redis.UniversalClient, authService *auth.AuthService, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &WsHandler{
		authService: authService,
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return originAllowed(allowedOrigins, r) },
		},
	}
	if redisClient != nil {
		h.subscribe = func(ctx context.Context, channel string) notifyFeed {
			return pubsubFeed{ps: redisClient.Subscribe(ctx, channel)}
		}
	}
	return h
}

// originAllowed accepts same-host origins when no list is configured.
func originAllowed(allowed []string, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(allowed) == 0 {
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
	for _, a := range allowed {
		if origin == a {
			return true
		}
	}
	return false
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type wsReadyMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
}

// wsReject is a failed handshake and the close frame it earns.
type wsReject struct {
	code   int
	reason string
	cause  error
}

func (r *wsReject) Error() string {
	if r.cause == nil {
		return r.reason
	}
	return r.reason + ": " + r.cause.Error()
}

func (h *WsHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	log := h.logger.With(slog.String("client_ip", c.ClientIP()))

	clientID, err := h.authenticate(conn)
	if err != nil {
		var reject *wsReject
		if errors.As(err, &reject) {
			writeClose(conn, reject.code, reject.reason)
		}
		log.Warn("websocket authentication failed", slog.Any("error", err))
		return
	}
	log = log.With(slog.String("client_id", clientID))

	if h.subscribe == nil {
		writeClose(conn, websocket.CloseTryAgainLater, "notifications unavailable")
		log.Warn("websocket refused, no redis configured")
		return
	}

	g, ctx := errgroup.WithContext(c.Request.Context())
	channel := tasks.NotifyChannel(clientID)
	feed := h.subscribe(ctx, channel)
	defer feed.Close()

	ready, _ := json.Marshal(wsReadyMessage{Type: "ready", ClientID: clientID})
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, ready); err != nil {
		log.Info("websocket closed before ready", slog.Any("error", err))
		return
	}
	log.Info("websocket subscribed", slog.String("channel", channel))

	g.Go(func() error { return drainReads(conn) })
	g.Go(func() error { return forwardNotifications(ctx, conn, feed.Messages()) })
	g.Go(func() error {
		// Unblocks drainReads once either side is done.
		<-ctx.Done()
		_ = conn.Close()
		return nil
	})

	err = g.Wait()
	switch {
	case err == nil, websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		log.Info("websocket closed")
	default:
		log.Info("websocket closed", slog.Any("error", err))
	}
}

func (h *WsHandler) authenticate(conn *websocket.Conn) (string, error) {
	if err := conn.SetReadDeadline(time.Now().Add(wsAuthTimeout)); err != nil {
		return "", err
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return "", &wsReject{code: websocket.ClosePolicyViolation, reason: "auth required", cause: err}
	}

	var msg wsAuthMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", &wsReject{code: websocket.ClosePolicyViolation, reason: "invalid auth payload", cause: err}
	}
	if msg.Type != "auth" || msg.Token == "" {
		return "", &wsReject{code: websocket.ClosePolicyViolation, reason: "auth required"}
	}
	clientID, ok := middleware.ClientIDFromToken(h.authService, msg.Token)
	if !ok {
		return "", &wsReject{code: websocket.ClosePolicyViolation, reason: "unauthorized"}
	}

	// From here on reads only carry pongs and close frames.
	if err := conn.SetReadDeadline(time.Now().Add(2 * wsPingInterval)); err != nil {
		return "", err
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * wsPingInterval))
	})
	return clientID, nil
}

func drainReads(conn *websocket.Conn) error {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
	}
}

func forwardNotifications(ctx context.Context, conn *websocket.Conn, messages <-chan *redis.Message) error {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return errors.New("notification feed closed")
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return fmt.Errorf("forward notification: %w", err)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(wsWriteWait))
}
