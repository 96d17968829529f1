package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crucial707/picopico/internal/auth"
	"github.com/crucial707/picopico/internal/models"
)

type stubSessions struct {
	user  *models.User
	err   error
	ended bool
}

func (s *stubSessions) CurrentUser(*http.Request) (*models.User, error) { return s.user, s.err }
func (s *stubSessions) End(http.ResponseWriter)                        { s.ended = true }

func okHandler(w http.ResponseWriter, r *http.Request) {
	if u, ok := CurrentUser(r.Context()); ok {
		w.Write([]byte(u.Username))
		return
	}
	w.Write([]byte("anonymous"))
}

func TestRequireAuth_RedirectsWithoutSession(t *testing.T) {
	s := &stubSessions{err: auth.ErrNoSession}
	h := RequireAuth(s)(http.HandlerFunc(okHandler))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/incidencias", nil))

	if rr.Code != http.StatusFound {
		t.Fatalf("status: got %d, want 302", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location: got %q, want /login", loc)
	}
	if !s.ended {
		t.Error("stale session cookie was not cleared")
	}
}

func TestRequireAuth_StoreError(t *testing.T) {
	s := &stubSessions{err: errors.New("db down")}
	h := RequireAuth(s)(http.HandlerFunc(okHandler))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
}

func TestRequireAuth_PassesUser(t *testing.T) {
	s := &stubSessions{user: &models.User{ID: 1, Username: "bob"}}
	h := RequireAuth(s)(http.HandlerFunc(okHandler))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "bob" {
		t.Errorf("got %d %q", rr.Code, rr.Body.String())
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want int
	}{
		{"admin", &models.User{ID: 1, Username: "root", IsAdmin: true}, http.StatusOK},
		{"regular", &models.User{ID: 2, Username: "bob"}, http.StatusForbidden},
		{"anonymous", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/usuarios", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()
			RequireAdmin(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusForbidden && rr.Body.Len() != 0 {
				t.Errorf("forbidden body should be empty, got %q", rr.Body.String())
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(true)(http.HandlerFunc(okHandler)).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Strict-Transport-Security"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}
