package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wordkeeper/internal/cascade"
	"github.com/iudanet/wordkeeper/internal/crdt"
	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/jwt"
	"github.com/iudanet/wordkeeper/internal/server/middleware"
	"github.com/iudanet/wordkeeper/internal/server/storage/sqlite"
	"github.com/iudanet/wordkeeper/internal/server/sync"
	"github.com/iudanet/wordkeeper/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testServer struct {
	handler http.Handler
	store   *sqlite.Storage
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := setupTestLogger()

	store, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tokens := jwt.NewManager("test-secret", time.Hour)
	service := sync.NewService(store, crdt.NewManualClock(1000), cascade.NewEngine(cascade.Default(), logger), nil, logger)

	limiter := middleware.NewRateLimiter(1000, 1000, time.Minute, logger)
	t.Cleanup(limiter.Stop)

	router := Router{
		Auth:         NewAuthHandler(logger, store, tokens),
		Sync:         NewSyncHandler(logger, service),
		Health:       NewHealthHandler(logger, store, "test"),
		Authenticate: middleware.Auth(logger, tokens),
		RateLimit:    limiter.Middleware,
	}
	return &testServer{handler: router.Handler(), store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// login регистрирует пользователя и возвращает токен и user_id
func (s *testServer) login(t *testing.T, username string) (string, string) {
	t.Helper()
	creds := api.SignupRequest{Username: username, Password: "password123"}
	w := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest(creds))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.AccessToken, resp.UserID
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestAuth_SignupLogin(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{name: "short password", body: api.SignupRequest{Username: "alice", Password: "short"}, status: http.StatusBadRequest},
		{name: "bad username", body: api.SignupRequest{Username: "a!", Password: "password123"}, status: http.StatusBadRequest},
		{name: "bad json", body: "not an object", status: http.StatusBadRequest},
		{name: "ok", body: api.SignupRequest{Username: "alice", Password: "password123"}, status: http.StatusCreated},
		{name: "duplicate", body: api.SignupRequest{Username: "alice", Password: "password123"}, status: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Username: "nobody", Password: "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Username: "alice", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[api.TokenResponse](t, w)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.UserID)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
}

func TestSync_RequiresToken(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/syncs/device-a/pull", "", api.PullRequest{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/syncs/device-a/pull", "garbage", api.PullRequest{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSync_RegisterLifecycle(t *testing.T) {
	s := setupTestServer(t)
	token, _ := s.login(t, "alice")

	w := s.do(t, http.MethodPost, "/api/v1/clients/device-a/reregister", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/syncs/device-a/status", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/clients/device-a/register", token, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/clients/device-a/register", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/clients/device-a/reregister", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/syncs/device-a/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decodeBody[api.SyncStatusResponse](t, w)
	assert.Equal(t, "device-a", status.ClientID)
	assert.Equal(t, models.Epoch, status.LastPull)

	w = s.do(t, http.MethodPost, "/api/v1/clients/bad%20id/register", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSync_PushPullRoundTrip(t *testing.T) {
	s := setupTestServer(t)
	token, userID := s.login(t, "alice")

	for _, d := range []string{"device-a", "device-b"} {
		w := s.do(t, http.MethodPost, "/api/v1/clients/"+d+"/register", token, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	push := api.PushRequest{}
	push.Add(&models.TagCategory{ID: "c1", UserID: userID, CategoryName: "level", Meta: models.Meta{ModifiedAt: 10}})
	push.Add(&models.Tag{ID: "t1", TagCategoryID: "missing", TagName: "orphan", Meta: models.Meta{ModifiedAt: 10}})
	w := s.do(t, http.MethodPost, "/api/v1/syncs/device-a/push", token, push)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pushResp := decodeBody[api.PushResponse](t, w)
	assert.Equal(t, 1, pushResp.Applied)
	assert.Equal(t, "The `TagCategoryId` does not exist.", pushResp.Failures["t1"])

	w = s.do(t, http.MethodPost, "/api/v1/syncs/device-b/pull", token, api.PullRequest{LastPull: models.Epoch})
	require.Equal(t, http.StatusOK, w.Code)
	pullResp := decodeBody[api.PullResponse](t, w)
	require.Len(t, pullResp.TagCategories, 1)
	assert.Equal(t, "level", pullResp.TagCategories[0].CategoryName)
	assert.NotEmpty(t, pullResp.Languages)
	assert.NotZero(t, pullResp.ServerTime)

	w = s.do(t, http.MethodPost, "/api/v1/syncs/device-c/pull", token, api.PullRequest{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSync_PushPersistenceConflict(t *testing.T) {
	s := setupTestServer(t)
	token, userID := s.login(t, "alice")
	w := s.do(t, http.MethodPost, "/api/v1/clients/device-a/register", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	push := api.PushRequest{}
	push.Add(&models.Phrase{ID: "p1", UserID: userID, PhraseText: "?", PhraseLanguage: "zz", Meta: models.Meta{ModifiedAt: 10}})
	w = s.do(t, http.MethodPost, "/api/v1/syncs/device-a/push", token, push)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[api.ErrorResponse](t, w)
	assert.Contains(t, resp.Details, "p1")
}

func TestSync_Conflicts(t *testing.T) {
	s := setupTestServer(t)
	token, userID := s.login(t, "alice")
	for _, d := range []string{"device-a", "device-b"} {
		w := s.do(t, http.MethodPost, "/api/v1/clients/"+d+"/register", token, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	first := api.PushRequest{}
	first.Add(&models.Phrase{ID: "p1", UserID: userID, PhraseText: "b", PhraseLanguage: "en", Meta: models.Meta{ModifiedAt: 12}})
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/syncs/device-b/push", token, first).Code)

	override := api.PushRequest{OverwriteIDs: []string{"p1"}}
	override.Add(&models.Phrase{ID: "p1", UserID: userID, PhraseText: "a", PhraseLanguage: "en", Meta: models.Meta{ModifiedAt: 15}})
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/syncs/device-a/push", token, override).Code)

	w := s.do(t, http.MethodPost, "/api/v1/syncs/device-b/conflicts/pull", token, api.ConflictsPullRequest{})
	require.Equal(t, http.StatusOK, w.Code)
	pulled := decodeBody[api.ConflictsPullResponse](t, w)
	require.Len(t, pulled.Entries, 1)
	assert.Equal(t, "p1", pulled.Entries[0].TargetID)

	w = s.do(t, http.MethodPost, "/api/v1/syncs/device-b/conflicts/push", token, api.ConflictsPushRequest{Entries: pulled.Entries})
	require.Equal(t, http.StatusOK, w.Code)
	pushed := decodeBody[api.ConflictsPushResponse](t, w)
	assert.Equal(t, sync.ReasonUnauthorized, pushed.Failures[pulled.Entries[0].ID])

	w = s.do(t, http.MethodGet, "/api/v1/conflicts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[api.ConflictsPullResponse](t, w).Entries, 1)
}

func TestSync_ServerTimeAndHealth(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/syncs/server-time", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Timestamp(1000), decodeBody[api.ServerTimeResponse](t, w).ServerTime)

	w = s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody[HealthResponse](t, w).Status)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("db down") }

func TestHealth_Unavailable(t *testing.T) {
	h := NewHealthHandler(setupTestLogger(), failingPinger{}, "test")
	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSync_MissingIdentity(t *testing.T) {
	h := NewSyncHandler(setupTestLogger(), nil)
	w := httptest.NewRecorder()
	h.ListConflicts(w, httptest.NewRequest(http.MethodGet, "/api/v1/conflicts", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
