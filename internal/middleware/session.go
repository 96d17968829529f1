package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/picopico/internal/auth"
	"github.com/crucial707/picopico/internal/models"
)

type key string

const userKey key = "user"

// SessionResolver resolves a request to its authenticated user.
type SessionResolver interface {
	CurrentUser(r *http.Request) (*models.User, error)
	End(w http.ResponseWriter)
}

// RequireAuth redirects to /login unless the request carries a valid session.
// The resolved user is available to handlers through CurrentUser.
func RequireAuth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.CurrentUser(r)
			if errors.Is(err, auth.ErrNoSession) {
				sessions.End(w)
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			if err != nil {
				slog.Error("resolve session", "path", r.URL.Path, "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin answers 403 with no body unless the session user is an admin.
// Mount it after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r.Context())
		if !ok || !user.IsAdmin {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser stores user in ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
