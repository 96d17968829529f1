package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/picopico/internal/middleware"
	"github.com/crucial707/picopico/internal/models"
	"github.com/crucial707/picopico/internal/views"
)

// UserStore is the account storage used by the admin pages.
type UserStore interface {
	Create(ctx context.Context, username, password string, isAdmin bool) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id int) error
}

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Repo  UserStore
	Views *views.Renderer
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "", "")
}

// ==========================
// Create User (is_admin is a checkbox: present means admin)
// ==========================
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	_, isAdmin := r.PostForm["is_admin"]

	user, err := h.Repo.Create(r.Context(), username, password, isAdmin)
	switch {
	case errors.Is(err, models.ErrDuplicateUsername):
		h.render(w, r, http.StatusConflict, "El usuario ya existe", username)
		return
	case errors.Is(err, models.ErrValidation):
		h.render(w, r, http.StatusBadRequest, validationMessage(err), username)
		return
	case err != nil:
		serverError(w, r, err)
		return
	}

	slog.Info("user created", "user_id", user.ID, "username", user.Username, "admin", user.IsAdmin, "by", actor(r))
	http.Redirect(w, r, "/usuarios", http.StatusFound)
}

// ==========================
// Delete User (never the caller's own account)
// ==========================
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if me, ok := middleware.CurrentUser(r.Context()); ok && me.ID == id {
		http.Error(w, MsgSelfDelete, http.StatusForbidden)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		serverError(w, r, err)
		return
	}

	slog.Info("user deleted", "user_id", id, "by", actor(r))
	http.Redirect(w, r, "/usuarios", http.StatusFound)
}

func (h *UserHandler) render(w http.ResponseWriter, r *http.Request, status int, msg, username string) {
	users, err := h.Repo.List(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	me, _ := middleware.CurrentUser(r.Context())
	h.Views.Page(w, status, "users.html", me, map[string]interface{}{
		"Error":    msg,
		"Username": username,
		"Users":    users,
	})
}

// actor names the session user for log lines.
func actor(r *http.Request) string {
	if u, ok := middleware.CurrentUser(r.Context()); ok {
		return u.Username
	}
	return ""
}
