package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"locallift/internal/api/middleware"
	"locallift/internal/auth"
	"locallift/internal/monetization"
	"locallift/internal/session"
	"locallift/internal/storage"
)

const (
	maxAvatarBytes = 2 << 20
	avatarURLTTL   = time.Hour
)

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AuthHandler runs the mock account flow: login, signup, logout, upgrade and
// avatar upload. Tokens identify a client; the session lives in that
// client's key-value namespace.
type AuthHandler struct {
	authService  *auth.AuthService
	openSession  middleware.SessionOpener
	limiter      redisRateCounter
	limitPerHour int
	storage      ObjectStorage
	scanner      VirusScanner
}

// NewAuthHandler builds the handler. limiter, storage and scanner may be nil.
func NewAuthHandler(
	authService *auth.AuthService,
	openSession middleware.SessionOpener,
	limiter redisRateCounter,
	limitPerHour int,
	storage ObjectStorage,
	scanner VirusScanner,
) *AuthHandler {
	if scanner == nil {
		scanner = noopScanner{}
	}
	return &AuthHandler{
		authService:  authService,
		openSession:  openSession,
		limiter:      limiter,
		limitPerHour: limitPerHour,
		storage:      storage,
		scanner:      scanner,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresIn   int              `json:"expires_in"`
	User        *session.Session `json:"user,omitempty"`
}

// IssueClient hands an anonymous visitor a client token, reusing the
// caller's client id when it already holds a valid one.
func (h *AuthHandler) IssueClient(c *gin.Context) {
	clientID, _ := h.clientIDFor(c)
	h.replyWithToken(c, http.StatusOK, clientID, nil)
}

// Login accepts any non-empty credential pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if h.rateLimited(c) {
		return
	}

	h.startSession(c, func(ctx context.Context, store *session.Store) (*session.Session, error) {
		return store.Login(ctx, req.Email, req.Password)
	})
}

// Signup creates a session with the supplied name.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if h.rateLimited(c) {
		return
	}

	h.startSession(c, func(ctx context.Context, store *session.Store) (*session.Session, error) {
		return store.Signup(ctx, req.Name, req.Email, req.Password)
	})
}

func (h *AuthHandler) startSession(c *gin.Context, start func(context.Context, *session.Store) (*session.Session, error)) {
	ctx := c.Request.Context()
	clientID, _ := h.clientIDFor(c)
	logger := middleware.LoggerFromContext(c).With(slog.String("client_id", clientID))

	store, err := h.openSession(ctx, clientID)
	if err != nil {
		logger.Error("open session failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	s, err := start(ctx, store)
	switch {
	case errors.Is(err, session.ErrInvalidCredentials), errors.Is(err, session.ErrInvalidSignup):
		logger.Info("sign in rejected", slog.Any("error", err))
		BadRequest(c, err.Error())
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Info("sign in abandoned", slog.Any("error", err))
		Error(c, http.StatusRequestTimeout, "request cancelled")
		return
	case err != nil:
		logger.Error("sign in failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.replyWithToken(c, http.StatusOK, clientID, s)
}

func (h *AuthHandler) replyWithToken(c *gin.Context, status int, clientID string, s *session.Session) {
	token, err := h.authService.GenerateToken(clientID)
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(status, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.authService.AccessTokenTTL().Seconds()),
		User:        s,
	})
}

// clientIDFor returns the client id of a valid bearer token, or a new one.
func (h *AuthHandler) clientIDFor(c *gin.Context) (string, bool) {
	if id, ok := middleware.ClientIDFromToken(h.authService, middleware.BearerToken(c)); ok {
		return id, true
	}
	return auth.NewClientID(), false
}

func (h *AuthHandler) rateLimited(c *gin.Context) bool {
	if h.limiter == nil || h.limitPerHour <= 0 {
		return false
	}
	key := "rate:login:" + c.ClientIP() + ":" + time.Now().UTC().Format("2006010215")
	count, err := incrWithTTL(c.Request.Context(), h.limiter, key, time.Hour)
	if err != nil {
		middleware.LoggerFromContext(c).Warn("login rate counter unavailable", slog.Any("error", err))
		return false
	}
	if count > int64(h.limitPerHour) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return true
	}
	return false
}

// Me returns the signed-in session.
func (h *AuthHandler) Me(c *gin.Context) {
	s := middleware.CurrentSession(c)
	if s == nil {
		AbortUnauthorized(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":      s,
		"avatarUrl": h.avatarURL(c, s),
	})
}

// Logout clears the session. The client token stays valid for anonymous use.
func (h *AuthHandler) Logout(c *gin.Context) {
	store, ok := middleware.SessionFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	if err := store.Logout(c.Request.Context()); err != nil {
		middleware.LoggerFromContext(c).Error("logout failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.Status(http.StatusNoContent)
}

// Upgrade marks the session premium.
func (h *AuthHandler) Upgrade(c *gin.Context) {
	store, ok := middleware.SessionFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	s, err := monetization.Upgrade(c.Request.Context(), store)
	switch {
	case errors.Is(err, monetization.ErrNotSignedIn):
		Unauthorized(c)
		return
	case err != nil:
		middleware.LoggerFromContext(c).Error("upgrade failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	middleware.LoggerFromContext(c).Info("session upgraded", slog.String("session_id", s.ID))
	c.JSON(http.StatusOK, gin.H{
		"user":    s,
		"message": "Thank you for upgrading to premium! You now have access to all features.",
	})
}

// UploadAvatar scans the image, stores it and records its key on the session.
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	store, ok := middleware.SessionFromContext(c)
	clientID, idOK := middleware.ClientIDFromContext(c)
	if !ok || !idOK {
		AbortUnauthorized(c)
		return
	}
	if h.storage == nil {
		Error(c, http.StatusServiceUnavailable, "object storage unavailable")
		return
	}
	logger := middleware.LoggerFromContext(c)

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if file.Size > maxAvatarBytes {
		BadRequest(c, "file too large")
		return
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	data, err := io.ReadAll(io.LimitReader(reader, maxAvatarBytes+1))
	reader.Close()
	if err != nil {
		Internal(c, "failed to read file")
		return
	}
	if len(data) > maxAvatarBytes {
		BadRequest(c, "file too large")
		return
	}

	contentType := http.DetectContentType(data)
	ext, allowed := avatarExtensions[contentType]
	if !allowed {
		BadRequest(c, "unsupported image type")
		return
	}

	if err := h.scanner.Scan(bytes.NewReader(data)); err != nil {
		if errors.Is(err, ErrInfected) {
			logger.Warn("avatar rejected by scanner", slog.Any("error", err))
			BadRequest(c, ErrInfected.Error())
			return
		}
		logger.Error("scan file", slog.Any("error", err))
		Internal(c, "failed to scan file")
		return
	}

	ctx := c.Request.Context()
	objectKey := storage.AvatarKey(clientID, ext)
	if _, err := h.storage.UploadFile(ctx, objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		logger.Error("upload file", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	previous := ""
	if cur := store.Current(); cur != nil {
		previous = cur.Avatar
	}
	s, err := store.SetAvatar(ctx, objectKey)
	if err != nil || s == nil {
		logger.Error("record avatar failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	if previous != "" && storage.OwnedBy(previous, storage.AvatarPrefix, clientID) {
		if err := h.storage.DeleteObject(ctx, previous); err != nil {
			logger.Warn("delete previous avatar failed", slog.String("object_key", previous), slog.Any("error", err))
		}
	}

	logger.Info("avatar uploaded", slog.String("object_key", objectKey), slog.String("file", path.Base(file.Filename)))
	c.JSON(http.StatusCreated, gin.H{
		"user":      s,
		"avatarUrl": h.avatarURL(c, s),
	})
}

func (h *AuthHandler) avatarURL(c *gin.Context, s *session.Session) string {
	if h.storage == nil || s.Avatar == "" {
		return ""
	}
	url, err := h.storage.GeneratePresignedURL(c.Request.Context(), s.Avatar, avatarURLTTL)
	if err != nil {
		middleware.LoggerFromContext(c).Warn("sign avatar url failed", slog.Any("error", err))
		return ""
	}
	return url
}
