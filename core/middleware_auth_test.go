package core

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/db/mock"
)

func TestRequireAuthPassesUserToHandler(t *testing.T) {
	user := testUser()
	app := newTestApp(t, &mock.Db{
		GetUserByIdFunc: func(id string) (*db.User, error) { return user, nil },
	})

	var gotUser *db.User
	protected := app.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+sessionTokenFor(t, user, testAuthSecret, time.Hour))
	rec := httptest.NewRecorder()

	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if gotUser == nil || gotUser.ID != user.ID {
		t.Errorf("handler did not receive the authenticated user: %+v", gotUser)
	}
}

func TestRequireAuthRejectsWithoutToken(t *testing.T) {
	app := newTestApp(t, &mock.Db{})

	handlerCalled := false
	protected := app.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	req := httptest.NewRequest("GET", "/protected", nil)
	rec := httptest.NewRecorder()

	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if handlerCalled {
		t.Error("protected handler ran for an unauthenticated request")
	}
}

func TestUserFromContextMissing(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := UserFromContext(req.Context()); ok {
		t.Error("expected no user in a fresh context")
	}
}
