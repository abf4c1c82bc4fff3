package core

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/db/mock"
)

const testAuthSecret = "test_secret_32_bytes_long_xxxxxx"

func newTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Jwt.AuthSecret = testAuthSecret
	return cfg
}

// newTestApp wires an App around the given mock database with a fixed config
// and a discarded logger.
func newTestApp(t *testing.T, mockDb *mock.Db) *App {
	t.Helper()

	app, err := NewApp(
		WithDbApp(mockDb),
		WithConfigProvider(config.NewProvider(newTestConfig())),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("NewApp() failed: %v", err)
	}
	return app
}

// testPasswordHash is computed once, every test user shares it instead of
// paying bcrypt cost per case.
var testPasswordHash = func() string {
	hash, err := crypto.GenerateHash("password123")
	if err != nil {
		panic(err)
	}
	return hash
}()

// testUser returns a verified user whose password is "password123".
func testUser() *db.User {
	return &db.User{
		ID:       "u1",
		Name:     "Test User",
		Email:    "test@example.com",
		Password: testPasswordHash,
		Role:     db.DefaultRole,
		Verified: true,
	}
}

// mapCache is a synchronous cache.Cache for tests; ristretto applies writes
// asynchronously, which would make cache assertions racy.
type mapCache[V any] struct {
	items map[string]V
}

func newMapCache[V any]() *mapCache[V] {
	return &mapCache[V]{items: make(map[string]V)}
}

func (c *mapCache[V]) Get(key string) (V, bool) {
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache[V]) Set(key string, value V, cost int64) bool {
	c.items[key] = value
	return true
}

func (c *mapCache[V]) SetWithTTL(key string, value V, cost int64, ttl time.Duration) bool {
	c.items[key] = value
	return true
}

func (c *mapCache[V]) Delete(key string) {
	delete(c.items, key)
}

// requestWithUser simulates what RequireAuth does for protected handlers.
func requestWithUser(req *http.Request, user *db.User) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), userContextKey, user))
}

func assertBodyContains(t *testing.T, body, want string) {
	t.Helper()
	if !strings.Contains(body, want) {
		t.Errorf("body %q does not contain %q", body, want)
	}
}
