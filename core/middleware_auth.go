package core

import (
	"context"
	"net/http"

	"github.com/quillhq/quill/db"
)

type contextKey string

const userContextKey contextKey = "authenticated_user"

// RequireAuth rejects unauthenticated requests with 401 and stores the
// resolved user in the request context for the protected handler.
func (a *App) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, resp, err := a.Auth().Authenticate(r)
		if err != nil {
			writeJsonError(w, resp)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user stored by RequireAuth.
// Protected handlers are only reachable through the middleware, so a missing
// user means a wiring bug; callers still get the ok flag to fail closed.
func UserFromContext(ctx context.Context) (*db.User, bool) {
	user, ok := ctx.Value(userContextKey).(*db.User)
	return user, ok && user != nil
}
