// Package auth verifies credentials and binds a signed session cookie to a user id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/picopico/internal/models"
)

// CookieName is the session cookie set after a successful login.
const CookieName = "picopico_session"

// ErrNoSession means the request carries no usable session: the cookie is
// missing, forged, expired, or names a user that no longer exists.
var ErrNoSession = errors.New("no session")

// UserStore is the lookup surface the manager needs from the user repository.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type sessionClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager authenticates users and issues/parses session cookies.
type Manager struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewManager returns a Manager signing cookies with secret. secure sets the
// cookie Secure flag and should follow whether the server runs TLS.
func NewManager(users UserStore, secret []byte, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{users: users, secret: secret, ttl: ttl, secure: secure, now: time.Now}
}

// Authenticate looks the user up by exact username and checks the password
// against the stored bcrypt hash. Both failure causes return ErrAuthFailure.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := m.users.GetByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrAuthFailure
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrAuthFailure
	}
	return user, nil
}

// Issue writes a session cookie bound to user.ID.
func (m *Manager) Issue(w http.ResponseWriter, user *models.User) error {
	now := m.now()
	claims := sessionClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// CurrentUser resolves the request's session cookie to a stored user.
// It returns ErrNoSession when the request is unauthenticated.
func (m *Manager) CurrentUser(r *http.Request) (*models.User, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(c.Value, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, ErrNoSession
	}

	user, err := m.users.GetByID(r.Context(), claims.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}

// End expires the session cookie on the client.
func (m *Manager) End(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
