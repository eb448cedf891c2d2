package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"locallift/internal/kv"
)


func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T) (*Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	fixed := time.UnixMilli(1700000000123)
	return NewStore(mem, Options{Now: func() time.Time { return fixed }}), mem
}

func persisted(t *testing.T, store kv.Store) *Session {
	t.Helper()
	var s Session
	err := kv.GetJSON(context.Background(), store, StorageKey, &s)
	if err != nil {
		require.ErrorIs(t, err, kv.ErrNotFound)
		return nil
	}
	return &s
}

func TestLogin_DemoIdentity(t *testing.T) {
	s, mem := newTestStore(t)

	got, err := s.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, &Session{ID: DemoID, Name: DemoName, Email: DemoEmail}, got)
	assert.Equal(t, got, persisted(t, mem))
}

func TestLogin_AnyCredentialsDeriveName(t *testing.T) {
	s, mem := newTestStore(t)

	got, err := s.Login(context.Background(), "jane.doe@mail.test", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, GenericID, got.ID)
	assert.Equal(t, "jane.doe", got.Name)
	assert.False(t, got.IsPremium)
	assert.Equal(t, got, persisted(t, mem))

	got, err = s.Login(context.Background(), DemoEmail, "wrong")
	require.NoError(t, err)
	assert.Equal(t, GenericID, got.ID, "demo email with another password is a generic login")
	assert.Equal(t, "demo", got.Name)
}

func TestLogin_EmptyFieldsLeavePriorSession(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	prior, err := s.Login(ctx, "a@b.c", "x")
	require.NoError(t, err)

	for _, tc := range []struct{ email, password string }{
		{"", "x"},
		{"a@b.c", ""},
		{"", ""},
	} {
		_, err := s.Login(ctx, tc.email, tc.password)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, prior, s.Current())
		assert.Equal(t, prior, persisted(t, mem))
	}
}

func TestSignup(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	got, err := s.Signup(ctx, "Jane", "jane@mail.test", "pw")
	require.NoError(t, err)
	assert.Equal(t, "1700000000123", got.ID)
	assert.Equal(t, "Jane", got.Name)
	assert.Equal(t, got, persisted(t, mem))

	_, err = s.Signup(ctx, "Jane", "", "pw")
	assert.ErrorIs(t, err, ErrInvalidSignup)
	assert.Equal(t, got, s.Current())
}

func TestLogout(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	_, err := s.Login(ctx, "a@b.c", "x")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	assert.Nil(t, s.Current())
	assert.Nil(t, persisted(t, mem))
	assert.False(t, s.IsAuthenticated())
}

func TestUpgrade(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	got, err := s.Upgrade(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "upgrade without a session is a no-op")
	assert.Nil(t, persisted(t, mem))

	_, err = s.Login(ctx, "a@b.c", "x")
	require.NoError(t, err)
	got, err = s.Upgrade(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsPremium)
	assert.True(t, s.IsPremium())
	assert.True(t, persisted(t, mem).IsPremium)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, kv.SetJSON(ctx, mem, StorageKey, Session{ID: "9", Name: "n", Email: "e", IsPremium: true}))

	s := NewStore(mem, Options{})
	require.NoError(t, s.Restore(ctx))
	require.NotNil(t, s.Current())
	assert.True(t, s.Current().IsPremium)
}

func TestRestore_CorruptedRecordIsCleared(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, StorageKey, []byte("{broken")))

	s := NewStore(mem, Options{})
	require.NoError(t, s.Restore(ctx))
	assert.Nil(t, s.Current())
	assert.Equal(t, 0, mem.Len())
}

func TestLogin_HonoursLatencyAndCancellation(t *testing.T) {
	mem := kv.NewMemory()
	s := NewStore(mem, Options{Latency: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Login(ctx, "a@b.c", "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, s.Current())
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Login(context.Background(), "a@b.c", "x")
	require.NoError(t, err)

	cur := s.Current()
	cur.IsPremium = true
	assert.False(t, s.IsPremium())
}
