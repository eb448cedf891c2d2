package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"

	"locallift/internal/auth"
	"locallift/internal/catalog"
	"locallift/internal/config"
	"locallift/internal/kv"
)

type fakeStorage struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	deleted  []string
	params   map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, _ := io.ReadAll(reader)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded[objectName] = b
	return &minio.UploadInfo{Key: objectName}, nil
}

func (s *fakeStorage) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://example.invalid/" + objectKey, nil
}

func (s *fakeStorage) GeneratePresignedURLWithParams(_ context.Context, objectKey string, _ time.Duration, params map[string]string) (string, error) {
	s.mu.Lock()
	s.params = params
	s.mu.Unlock()
	return "https://example.invalid/" + objectKey + "?signed=1", nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

type fakeQueue struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (q *fakeQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	q.opts = append(q.opts, opts)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

type testServer struct {
	t       *testing.T
	router  *gin.Engine
	auth    *auth.AuthService
	kv      *kv.Memory
	storage *fakeStorage
	queue   *fakeQueue
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	priv, pub, err := auth.GenerateKeyPair(1024)
	require.NoError(t, err)
	svc, err := auth.NewAuthService(priv, pub, time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{
		Auth:      config.AuthConfig{AccessTTL: time.Hour},
		Ads:       config.AdsConfig{ClientID: "ca-pub-test", Enabled: true, TestMode: true},
		Affiliate: config.AffiliateConfig{PartnerID: "partner"},
	}

	ts := &testServer{
		t:       t,
		auth:    svc,
		kv:      kv.NewMemory(),
		storage: newFakeStorage(),
		queue:   &fakeQueue{},
	}
	ts.router = NewRouter(nil)
	RegisterRoutes(ts.router, Deps{
		Config:  cfg,
		Auth:    svc,
		KV:      ts.kv,
		Catalog: catalog.New(nil),
		Queue:   ts.queue,
		Storage: ts.storage,
		Rand:    rand.New(rand.NewPCG(1, 2)),
	})
	return ts
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// clientToken issues an anonymous client token.
func (ts *testServer) clientToken() string {
	ts.t.Helper()
	w := ts.do(http.MethodPost, "/v1/auth/client", "", nil)
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())
	var resp tokenResponse
	decode(ts.t, w, &resp)
	return resp.AccessToken
}

// signIn logs a fresh client in and optionally upgrades it.
func (ts *testServer) signIn(premium bool) string {
	ts.t.Helper()
	token := ts.clientToken()
	w := ts.do(http.MethodPost, "/v1/auth/login", token, loginRequest{Email: "sam@example.com", Password: "secret"})
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())
	if premium {
		w = ts.do(http.MethodPost, "/v1/auth/upgrade", token, nil)
		require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())
	}
	return token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}
