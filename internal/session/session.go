// Package session implements the mock account flow. Any non-empty credential
// pair is accepted; the resulting session lives in a kv.Store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"locallift/internal/auth"
	"locallift/internal/kv"
)

// StorageKey is where the session record is persisted.
const StorageKey = "user"

// Demo credentials map to a fixed identity.
const (
	DemoEmail = "demo@example.com"
	DemoID    = "1"
	DemoName  = "Demo User"
	// GenericID is the id handed to every non-demo login.
	GenericID = "2"
)

// DemoPassword is the password paired with DemoEmail.
const DemoPassword = "password"

var (
	demoHashOnce sync.Once
	demoHash     string
)

// defaultDemoHash hashes DemoPassword once per process.
func defaultDemoHash() string {
	demoHashOnce.Do(func() {
		h, err := auth.HashPassword(DemoPassword)
		if err != nil {
			panic(err)
		}
		demoHash = h
	})
	return demoHash
}

var (
	// ErrInvalidCredentials is returned by Login when email or password is empty.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidSignup is returned by Signup when email or password is empty.
	ErrInvalidSignup = errors.New("invalid information")
)

// Session is the signed-in identity.
type Session struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar,omitempty"`
	IsPremium bool   `json:"isPremium"`
}

// Manager is the capability surface handed to components that need the session.
type Manager interface {
	Current() *Session
	Login(ctx context.Context, email, password string) (*Session, error)
	Signup(ctx context.Context, name, email, password string) (*Session, error)
	Logout(ctx context.Context) error
	Upgrade(ctx context.Context) (*Session, error)
}

var _ Manager = (*Store)(nil)

// Options tunes a Store.
type Options struct {
	// Latency is waited before Login and Signup resolve.
	Latency time.Duration
	Logger  *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// DemoPasswordHash overrides the bcrypt hash of the demo password.
	DemoPasswordHash string
}

// Store holds the current session and mirrors it into kv.
type Store struct {
	mu       sync.RWMutex
	current  *Session
	kv       kv.Store
	latency  time.Duration
	logger   *slog.Logger
	now      func() time.Time
	demoHash string
}

// NewStore builds a Store over kvStore. Call Restore to rehydrate a persisted session.
func NewStore(kvStore kv.Store, opts Options) *Store {
	s := &Store{
		kv:       kvStore,
		latency:  opts.Latency,
		logger:   opts.Logger,
		now:      opts.Now,
		demoHash: opts.DemoPasswordHash,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.demoHash == "" {
		s.demoHash = defaultDemoHash()
	}
	return s
}

// Restore loads the persisted session. A record that fails to parse is
// deleted and the store stays signed out.
func (s *Store) Restore(ctx context.Context) error {
	var stored Session
	err := kv.GetJSON(ctx, s.kv, StorageKey, &stored)
	switch {
	case err == nil:
		s.setCurrent(&stored)
		return nil
	case errors.Is(err, kv.ErrNotFound):
		s.setCurrent(nil)
		return nil
	case kv.IsDecodeError(err):
		s.logger.Warn("discarding corrupted session record", slog.Any("error", err))
		s.setCurrent(nil)
		if delErr := s.kv.Delete(ctx, StorageKey); delErr != nil {
			return fmt.Errorf("clear corrupted session: %w", delErr)
		}
		return nil
	default:
		return fmt.Errorf("load session: %w", err)
	}
}

// Current returns a copy of the signed-in session, or nil.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// IsAuthenticated reports whether a session exists.
func (s *Store) IsAuthenticated() bool {
	return s.Current() != nil
}

// IsPremium reports whether the current session has been upgraded.
func (s *Store) IsPremium() bool {
	cur := s.Current()
	return cur != nil && cur.IsPremium
}

// Login signs in with any non-empty credential pair.
func (s *Store) Login(ctx context.Context, email, password string) (*Session, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var next Session
	if email == DemoEmail && auth.CheckPasswordHash(password, s.demoHash) {
		next = Session{ID: DemoID, Name: DemoName, Email: DemoEmail}
	} else {
		next = Session{ID: GenericID, Name: localPart(email), Email: email}
	}

	if err := s.persist(ctx, &next); err != nil {
		return nil, err
	}
	s.logger.Info("session started", slog.String("session_id", next.ID))
	return s.Current(), nil
}

// Signup creates an account-shaped session; the name is taken as given.
func (s *Store) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, ErrInvalidSignup
	}

	next := Session{
		ID:    strconv.FormatInt(s.now().UnixMilli(), 10),
		Name:  name,
		Email: email,
	}
	if err := s.persist(ctx, &next); err != nil {
		return nil, err
	}
	s.logger.Info("account created", slog.String("session_id", next.ID))
	return s.Current(), nil
}

// Logout clears the session and its persisted copy.
func (s *Store) Logout(ctx context.Context) error {
	s.setCurrent(nil)
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Upgrade marks the current session premium. Without a session it does nothing.
func (s *Store) Upgrade(ctx context.Context) (*Session, error) {
	cur := s.Current()
	if cur == nil {
		return nil, nil
	}
	cur.IsPremium = true
	if err := s.persist(ctx, cur); err != nil {
		return nil, err
	}
	s.logger.Info("account upgraded to premium", slog.String("session_id", cur.ID))
	return s.Current(), nil
}

// SetAvatar records the avatar URL on the current session.
func (s *Store) SetAvatar(ctx context.Context, avatar string) (*Session, error) {
	cur := s.Current()
	if cur == nil {
		return nil, nil
	}
	cur.Avatar = avatar
	if err := s.persist(ctx, cur); err != nil {
		return nil, err
	}
	return s.Current(), nil
}

func (s *Store) persist(ctx context.Context, next *Session) error {
	if err := kv.SetJSON(ctx, s.kv, StorageKey, next); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.setCurrent(next)
	return nil
}

func (s *Store) setCurrent(next *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next == nil {
		s.current = nil
		return
	}
	cp := *next
	s.current = &cp
}

func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func localPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
