package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"locallift/internal/auth"
	"locallift/internal/session"
)

const (
	clientIDKey = "clientID"
	sessionKey  = "session"
)

// SessionOpener hydrates the session store of one client.
type SessionOpener func(ctx context.Context, clientID string) (*session.Store, error)

type authMode int

const (
	modeOptional authMode = iota
	modeClient
	modeSession
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware requires a valid client token with a signed-in session.
// The client id and session store are injected into the context.
func AuthMiddleware(authService *auth.AuthService, open SessionOpener) gin.HandlerFunc {
	return clientMiddleware(authService, open, modeSession)
}

// ClientMiddleware requires a valid client token; the session may be signed
// out.
func ClientMiddleware(authService *auth.AuthService, open SessionOpener) gin.HandlerFunc {
	return clientMiddleware(authService, open, modeClient)
}

// OptionalAuthMiddleware injects the client when a valid token is present
// and lets anonymous requests through.
func OptionalAuthMiddleware(authService *auth.AuthService, open SessionOpener) gin.HandlerFunc {
	return clientMiddleware(authService, open, modeOptional)
}

func clientMiddleware(authService *auth.AuthService, open SessionOpener, mode authMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, ok := ClientIDFromToken(authService, BearerToken(c))
		if !ok {
			if mode == modeOptional {
				c.Next()
				return
			}
			abortUnauthorized(c)
			return
		}

		store, err := open(c.Request.Context(), clientID)
		if err != nil {
			log := LoggerFromContext(c).With(slog.String("client_id", clientID), slog.Any("error", err))
			if mode == modeOptional {
				log.Warn("open session failed, continuing anonymously")
				c.Next()
				return
			}
			log.Error("open session failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if mode == modeSession && !store.IsAuthenticated() {
			abortUnauthorized(c)
			return
		}

		c.Set(clientIDKey, clientID)
		c.Set(sessionKey, store)
		c.Next()
	}
}

// ClientIDFromContext returns the client id injected by the auth middlewares.
func ClientIDFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(clientIDKey)
	if !ok {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}

// SessionFromContext returns the session store injected by the auth middlewares.
func SessionFromContext(c *gin.Context) (*session.Store, bool) {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	store, ok := value.(*session.Store)
	return store, ok && store != nil
}

// CurrentSession returns the signed-in session of the request, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	store, ok := SessionFromContext(c)
	if !ok {
		return nil
	}
	return store.Current()
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) string {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ClientIDFromToken validates raw and returns the client id it was issued for.
func ClientIDFromToken(authService *auth.AuthService, raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	claims, err := authService.ValidateToken(raw)
	if err != nil || claims.TokenType != auth.TokenTypeAccess || claims.ClientID == "" {
		return "", false
	}
	return claims.ClientID, true
}
