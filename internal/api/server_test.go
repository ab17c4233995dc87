package api

import (
	"bytes"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdueapp/bookdue-server/internal/auth"
	"github.com/bookdueapp/bookdue-server/internal/http/response"
	"github.com/bookdueapp/bookdue-server/internal/importer"
	"github.com/bookdueapp/bookdue-server/internal/ratelimit"
	"github.com/bookdueapp/bookdue-server/internal/search"
	"github.com/bookdueapp/bookdue-server/internal/service"
	"github.com/bookdueapp/bookdue-server/internal/store"
	"github.com/bookdueapp/bookdue-server/internal/validation"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// setupTestServer creates a test server with all dependencies on temp storage.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.New(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(tmpDir, "search"),
		Logger:   logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	s.SetSearchIndexer(index)

	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute)
	require.NoError(t, err)

	validate := validation.New()

	return NewServer(Options{
		Store:              s,
		AuthService:        service.NewAuthService(s, tokens, validate, logger),
		DeadlineService:    service.NewDeadlineService(s, validate, logger),
		PaceService:        service.NewPaceService(s, logger),
		AchievementService: service.NewAchievementService(s, logger),
		SearchService:      service.NewSearchService(index, s, logger),
		Importer:           importer.NewImporter(s, logger),
		Logger:             logger,
	})
}

// doJSON sends a JSON request and returns the recorded response.
func doJSON(t *testing.T, server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// decodeEnvelope parses the response envelope.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// registerTestUser registers a user through the API and returns its token.
func registerTestUser(t *testing.T, server *Server, email string) string {
	t.Helper()

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":        email,
		"password":     "password123",
		"display_name": "Test Reader",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	token, ok := data["access_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestHealthCheck(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.NotNil(t, env.Data)
}

func TestAuthFlow(t *testing.T) {
	server := setupTestServer(t)

	token := registerTestUser(t, server, "reader@example.com")

	// Login works with the same credentials.
	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "reader@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// The token grants access to /users/me.
	w = doJSON(t, server, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "reader@example.com", data["email"])
	assert.Empty(t, data["password_hash"])
}

func TestAuthFlow_BadLogin(t *testing.T) {
	server := setupTestServer(t)
	registerTestUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "reader@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestRequireAuth(t *testing.T) {
	server := setupTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{"missing header", ""},
		{"garbage token", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, server, http.MethodGet, "/api/v1/deadlines/", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestDeadlineCRUD(t *testing.T) {
	server := setupTestServer(t)
	token := registerTestUser(t, server, "reader@example.com")

	// Create.
	w := doJSON(t, server, http.MethodPost, "/api/v1/deadlines/", token, map[string]any{
		"book_title":     "The Hobbit",
		"format":         "physical",
		"source":         "library",
		"total_quantity": 310,
		"deadline_date":  time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	created, ok := env.Data.(map[string]any)
	require.True(t, ok)
	deadlineID, ok := created["id"].(string)
	require.True(t, ok)
	assert.Equal(t, "The Hobbit", created["book_title"])
	assert.Equal(t, "flexible", created["flexibility"])

	// List includes the deadline with a status.
	w = doJSON(t, server, http.MethodGet, "/api/v1/deadlines/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	list, ok := env.Data.([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	entry, ok := list[0].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, entry, "status")
	assert.Contains(t, entry, "days_left")

	// Get.
	w = doJSON(t, server, http.MethodGet, "/api/v1/deadlines/"+deadlineID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Partial update.
	w = doJSON(t, server, http.MethodPatch, "/api/v1/deadlines/"+deadlineID, token, map[string]any{
		"book_title": "The Hobbit, Annotated",
	})
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	updated, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "The Hobbit, Annotated", updated["book_title"])

	// Delete.
	w = doJSON(t, server, http.MethodDelete, "/api/v1/deadlines/"+deadlineID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Gone.
	w = doJSON(t, server, http.MethodGet, "/api/v1/deadlines/"+deadlineID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeadlineCRUD_ValidationError(t *testing.T) {
	server := setupTestServer(t)
	token := registerTestUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/v1/deadlines/", token, map[string]any{
		"book_title":     "Bad Format Book",
		"format":         "hardcover",
		"source":         "library",
		"total_quantity": 100,
		"deadline_date":  time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeadlineOwnership(t *testing.T) {
	server := setupTestServer(t)
	owner := registerTestUser(t, server, "owner@example.com")
	other := registerTestUser(t, server, "other@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/v1/deadlines/", owner, map[string]any{
		"book_title":     "Private Book",
		"format":         "physical",
		"source":         "personal",
		"total_quantity": 200,
		"deadline_date":  time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	created := env.Data.(map[string]any)
	deadlineID := created["id"].(string)

	w = doJSON(t, server, http.MethodGet, "/api/v1/deadlines/"+deadlineID, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, server, http.MethodDelete, "/api/v1/deadlines/"+deadlineID, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAddProgressAndStatus(t *testing.T) {
	server := setupTestServer(t)
	token := registerTestUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/v1/deadlines/", token, map[string]any{
		"book_title":     "Project Hail Mary",
		"format":         "physical",
		"source":         "library",
		"total_quantity": 476,
		"deadline_date":  time.Now().AddDate(0, 0, 14).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	deadlineID := env.Data.(map[string]any)["id"].(string)

	// Record progress.
	w = doJSON(t, server, http.MethodPost, "/api/v1/deadlines/"+deadlineID+"/progress", token, map[string]any{
		"current_progress": 120,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env = decodeEnvelope(t, w)
	deadline := env.Data.(map[string]any)
	progress, ok := deadline["progress"].([]any)
	require.True(t, ok)
	require.Len(t, progress, 1)

	// Status endpoint classifies the deadline.
	w = doJSON(t, server, http.MethodGet, "/api/v1/deadlines/"+deadlineID+"/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	status, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, status, "status")
	assert.Contains(t, status, "required_pace")
}

func TestAddProgress_BadTimestamp(t *testing.T) {
	server := setupTestServer(t)
	token := registerTestUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/v1/deadlines/", token, map[string]any{
		"book_title":     "Some Book",
		"format":         "ebook",
		"source":         "personal",
		"total_quantity": 100,
		"deadline_date":  time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	deadlineID := env.Data.(map[string]any)["id"].(string)

	w = doJSON(t, server, http.MethodPost, "/api/v1/deadlines/"+deadlineID+"/progress", token, map[string]any{
		"current_progress": 10,
		"created_at":       "yesterday",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaceEndpoints(t *testing.T) {
	server := setupTestServer(t)
	token := registerTestUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodGet, "/api/v1/pace/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	data := env.Data.(map[string]any)
	assert.Equal(t, "default_fallback", data["calculation_method"])
	assert.Equal(t, "25 pages/day", data["display"])

	w = doJSON(t, server, http.MethodGet, "/api/v1/pace/listening", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	data = env.Data.(map[string]any)
	assert.Equal(t, false, data["is_reliable"])
}

func TestStreaksAndAchievements(t *testing.T) {
	server := setupTestServer(t)
	token := registerTestUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodGet, "/api/v1/streaks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	data := env.Data.(map[string]any)
	assert.Equal(t, float64(0), data["current_streak"])

	w = doJSON(t, server, http.MethodGet, "/api/v1/achievements/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	catalog, ok := env.Data.([]any)
	require.True(t, ok)
	assert.Len(t, catalog, 15)

	// No activity: nothing unlocks, but the response is an empty array,
	// not null.
	w = doJSON(t, server, http.MethodPost, "/api/v1/achievements/check", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	unlocked, ok := env.Data.([]any)
	require.True(t, ok)
	assert.Empty(t, unlocked)
}

func TestSearchEndpoint(t *testing.T) {
	server := setupTestServer(t)
	token := registerTestUser(t, server, "reader@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/v1/deadlines/", token, map[string]any{
		"book_title":     "The Way of Kings",
		"author":         "Brandon Sanderson",
		"format":         "physical",
		"source":         "personal",
		"total_quantity": 1007,
		"deadline_date":  time.Now().AddDate(0, 2, 0).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/search?q=kings", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	result := env.Data.(map[string]any)
	assert.Equal(t, float64(1), result["total"])

	// Missing q is a 400.
	w = doJSON(t, server, http.MethodGet, "/api/v1/search", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpoint_UserScoped(t *testing.T) {
	server := setupTestServer(t)
	owner := registerTestUser(t, server, "owner@example.com")
	other := registerTestUser(t, server, "other@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/v1/deadlines/", owner, map[string]any{
		"book_title":     "Secret Project",
		"format":         "ebook",
		"source":         "personal",
		"total_quantity": 100,
		"deadline_date":  time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/search?q=secret", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	result := env.Data.(map[string]any)
	assert.Equal(t, float64(0), result["total"])
}

func TestRateLimit(t *testing.T) {
	server := setupTestServer(t)

	// 1 request per second with no burst headroom: the second request in
	// the same instant must be rejected.
	limiter := ratelimit.New(1, 1)
	defer limiter.Stop()
	rebuilt := NewServer(Options{
		Store:              server.store,
		AuthService:        server.authService,
		DeadlineService:    server.deadlineService,
		PaceService:        server.paceService,
		AchievementService: server.achievementService,
		SearchService:      server.searchService,
		Importer:           server.importer,
		Limiter:            limiter,
		Logger:             server.logger,
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := doJSON(t, rebuilt, http.MethodGet, "/health", "", nil)
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Contains(t, statuses[1:], http.StatusTooManyRequests,
		fmt.Sprintf("expected a 429 after the burst was consumed, got %v", statuses))
}
