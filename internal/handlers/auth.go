package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/picopico/internal/metrics"
	"github.com/crucial707/picopico/internal/middleware"
	"github.com/crucial707/picopico/internal/models"
	"github.com/crucial707/picopico/internal/views"
)

// Sessions is the part of auth.Manager the login flow uses.
type Sessions interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Issue(w http.ResponseWriter, user *models.User) error
	CurrentUser(r *http.Request) (*models.User, error)
	End(w http.ResponseWriter)
}

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Sessions Sessions
	Views    *views.Renderer
}

// ==========================
// Login form
// ==========================
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Sessions.CurrentUser(r); err == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.renderLogin(w, http.StatusOK, "", "")
}

// ==========================
// Login submit
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.Sessions.Authenticate(r.Context(), username, password)
	if errors.Is(err, models.ErrAuthFailure) {
		metrics.IncLogin("failure")
		slog.Warn("login failed", "username", username, "remote", r.RemoteAddr)
		h.renderLogin(w, http.StatusUnauthorized, MsgBadCredentials, username)
		return
	}
	if err != nil {
		metrics.IncLogin("error")
		serverError(w, r, err)
		return
	}

	if err := h.Sessions.Issue(w, user); err != nil {
		metrics.IncLogin("error")
		serverError(w, r, err)
		return
	}
	metrics.IncLogin("success")
	slog.Info("login", "user_id", user.ID, "username", user.Username)
	http.Redirect(w, r, "/", http.StatusFound)
}

// ==========================
// Logout
// ==========================
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.End(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// ==========================
// Home
// ==========================
func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())
	h.Views.Page(w, http.StatusOK, "index.html", user, nil)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, status int, msg, username string) {
	h.Views.Page(w, status, "login.html", nil, map[string]interface{}{
		"Error":    msg,
		"Username": username,
	})
}
