package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/picopico/internal/middleware"
	"github.com/crucial707/picopico/internal/models"
	"github.com/crucial707/picopico/internal/views"
)

var (
	adminUser   = &models.User{ID: 1, Username: "admin", IsAdmin: true}
	regularUser = &models.User{ID: 2, Username: "bob"}
)

func newViews(t *testing.T) *views.Renderer {
	t.Helper()
	v, err := views.New()
	if err != nil {
		t.Fatalf("views.New: %v", err)
	}
	return v
}

// formRequest builds a POST with an urlencoded body.
func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// asUser attaches the session user the way RequireAuth does.
func asUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), u))
}

func requestWithChiURLParams(method, path string, params map[string]string) *http.Request {
	r := httptest.NewRequest(method, path, nil)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
