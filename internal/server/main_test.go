package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"boostly/internal/config"
	"boostly/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "handler-test-secret-that-is-long-enough"

// tickingClock advances one second per reading so posts get distinct timestamps.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func testConfig() *config.Config {
	return &config.Config{
		Env:             "test",
		JWTSecret:       testSecret,
		TokenTTLMinutes: 180,
		TokenIssuer:     "boostly-api",
		TokenAudience:   "boostly-client",
		CookieSecure:    true,
		PasswordHashing: config.PasswordHashingPlaintext,
		Port:            "0",
		AllowedOrigins:  "http://localhost:5173",
		FeatureFlags:    "like_stream=on",
	}
}

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	mr     *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clock := &tickingClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	s, err := NewServerWithDeps(testConfig(), db, rdb, WithClock(clock.Now))
	require.NoError(t, err)

	return &testEnv{server: s, app: s.App(), db: db, mr: mr}
}

// do sends a JSON request and decodes the JSON response body into a map.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func (e *testEnv) register(t *testing.T, name, email string, company bool) {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/auth/register", map[string]any{
		"username": name,
		"email":    email,
		"password": "hunter2",
		"company":  company,
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/auth/login", map[string]any{
		"email":    email,
		"password": "hunter2",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	tok, ok := body["token"].(string)
	require.True(t, ok)
	return tok
}

func (e *testEnv) createPost(t *testing.T, token, description string) uint {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/company/create_post", map[string]any{
		"mediaUrl":         "https://cdn.example.com/a.png",
		"post_description": description,
	}, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	return uint(body["post_id"].(float64))
}
