package main

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/picopico/internal/config"
	"github.com/crucial707/picopico/internal/db"
	"github.com/crucial707/picopico/internal/models"
	"github.com/crucial707/picopico/internal/repo"
)

type testApp struct {
	srv   *httptest.Server
	db    *sql.DB
	users *repo.UserRepo
}

// newTestApp migrates a fresh SQLite file, seeds admin/adminpw and serves the full router.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := config.Config{
		Env:                "dev",
		SecretKey:          "test-secret",
		SessionHours:       1,
		DBDriver:           config.DriverSQLite,
		DBPath:             filepath.Join(t.TempDir(), "picopico.db"),
		IncidentTypes:      models.DefaultIncidentTypes,
		StockAllowNegative: true,
		AdminUsername:      "admin",
		AdminPassword:      "adminpw",
	}
	require.NoError(t, db.Run(cfg))

	database, err := db.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	users := repo.NewUserRepo(database)
	require.NoError(t, seedAdmin(context.Background(), users, cfg))

	router, err := newRouter(database, cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, db: database, users: users}
}

// client returns a browser-like client with its own cookie jar that does not follow redirects.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(a.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (a *testApp) post(t *testing.T, c *http.Client, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.PostForm(a.srv.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (a *testApp) login(t *testing.T, c *http.Client, username, password string) {
	t.Helper()
	resp, body := a.post(t, c, "/login", url.Values{"username": {username}, "password": {password}})
	require.Equalf(t, http.StatusFound, resp.StatusCode, "login %s: %s", username, body)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func TestAPI_Health(t *testing.T) {
	app := newTestApp(t)
	resp, body := app.get(t, app.client(t), "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	resp, _ = app.get(t, app.client(t), "/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_GuardedRoutesRedirectToLogin(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	for _, path := range []string{"/", "/incidencias", "/stock", "/usuarios", "/usuarios/eliminar/1", "/logout"} {
		resp, _ := app.get(t, c, path)
		assert.Equalf(t, http.StatusFound, resp.StatusCode, "GET %s", path)
		assert.Equalf(t, "/login", resp.Header.Get("Location"), "GET %s", path)
	}
}

func TestAPI_LoginFailureShowsInlineMessage(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	resp, body := app.post(t, c, "/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Usuario o contraseña incorrectos")

	// No session was established.
	resp, _ = app.get(t, c, "/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestAPI_LoginGreetsUser(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.login(t, c, "admin", "adminpw")

	resp, body := app.get(t, c, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Bienvenida, admin")
	assert.Contains(t, body, `href="/usuarios"`)
}

func TestAPI_NonAdminForbiddenAfterCreation(t *testing.T) {
	app := newTestApp(t)
	admin := app.client(t)
	app.login(t, admin, "admin", "adminpw")

	resp, _ := app.post(t, admin, "/usuarios", url.Values{"username": {"bob"}, "password": {"pw1"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/usuarios", resp.Header.Get("Location"))

	resp, _ = app.get(t, admin, "/logout")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// The logged-out admin client no longer has a session.
	resp, _ = app.get(t, admin, "/usuarios")
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	app.login(t, admin, "bob", "pw1")
	resp, body := app.get(t, admin, "/usuarios")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, body)

	// A regular user's navigation has no Usuarios link.
	_, body = app.get(t, admin, "/")
	assert.NotContains(t, body, `href="/usuarios"`)

	// Forbidden regardless of whether the target exists.
	for _, path := range []string{"/usuarios/eliminar/1", "/usuarios/eliminar/999"} {
		resp, _ = app.get(t, admin, path)
		assert.Equalf(t, http.StatusForbidden, resp.StatusCode, "GET %s", path)
	}
	resp, _ = app.post(t, admin, "/usuarios", url.Values{"username": {"mallory"}, "password": {"x"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_DuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.login(t, c, "admin", "adminpw")

	before, err := app.users.Count(context.Background())
	require.NoError(t, err)

	resp, body := app.post(t, c, "/usuarios", url.Values{"username": {"admin"}, "password": {"x"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "El usuario ya existe")

	after, err := app.users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAPI_AdminCannotDeleteSelf(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.login(t, c, "admin", "adminpw")

	admin, err := app.users.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)

	resp, body := app.get(t, c, "/usuarios/eliminar/"+strconv.Itoa(admin.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "No puedes eliminar tu propio usuario")

	_, err = app.users.GetByID(context.Background(), admin.ID)
	assert.NoError(t, err, "admin must still exist")
}

func TestAPI_DeleteUser(t *testing.T) {
	app := newTestApp(t)
	admin := app.client(t)
	app.login(t, admin, "admin", "adminpw")

	bob, err := app.users.Create(context.Background(), "bob", "pw1", false)
	require.NoError(t, err)

	bobClient := app.client(t)
	app.login(t, bobClient, "bob", "pw1")

	resp, _ := app.get(t, admin, "/usuarios/eliminar/"+strconv.Itoa(bob.ID))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/usuarios", resp.Header.Get("Location"))

	resp, _ = app.get(t, admin, "/usuarios/eliminar/"+strconv.Itoa(bob.ID))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = app.get(t, admin, "/usuarios/eliminar/abc")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Bob's still-signed cookie no longer resolves to a user.
	resp, _ = app.get(t, bobClient, "/incidencias")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestAPI_ReportIncident(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.login(t, c, "admin", "adminpw")

	resp, _ := app.post(t, c, "/incidencias", url.Values{"tipo": {"Otro"}, "producto": {""}, "descripcion": {"primera"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, _ = app.post(t, c, "/incidencias", url.Values{
		"tipo": {"Falta de stock"}, "producto": {"Leche"}, "descripcion": {"sin stock"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/incidencias", resp.Header.Get("Location"))

	resp, body := app.get(t, c, "/incidencias")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	items := listItems(body, `<ul class="incidents">`)
	require.Len(t, items, 2)
	assert.Contains(t, items[0], "Falta de stock — Leche — admin — Open")
	assert.Contains(t, items[1], "primera")
}

func TestAPI_ReportIncident_EmptyDescription(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.login(t, c, "admin", "adminpw")

	resp, _ := app.post(t, c, "/incidencias", url.Values{"tipo": {"Otro"}, "descripcion": {""}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	n, err := repo.NewIncidentRepo(app.db).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAPI_StockEntriesKeepInsertionOrder(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.login(t, c, "admin", "adminpw")

	for _, q := range []string{"10", "10", "5"} {
		resp, _ := app.post(t, c, "/stock", url.Values{"nombre": {"Harina"}, "cantidad": {q}})
		require.Equal(t, http.StatusFound, resp.StatusCode)
	}
	resp, _ := app.post(t, c, "/stock", url.Values{"nombre": {"Harina"}, "cantidad": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body := app.get(t, c, "/stock")
	assert.Equal(t, []string{"Harina — 10", "Harina — 10", "Harina — 5"}, listItems(body, `<ul class="stock">`))
}

func TestAPI_StockResetsWithNewProcess(t *testing.T) {
	first := newTestApp(t)
	c := first.client(t)
	first.login(t, c, "admin", "adminpw")
	resp, _ := first.post(t, c, "/stock", url.Values{"nombre": {"Pan"}, "cantidad": {"3"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	second := newTestApp(t)
	c2 := second.client(t)
	second.login(t, c2, "admin", "adminpw")
	_, body := second.get(t, c2, "/stock")
	assert.Empty(t, listItems(body, `<ul class="stock">`))
}

// listItems returns the trimmed text of each <li> inside the list opened by marker.
func listItems(body, marker string) []string {
	start := strings.Index(body, marker)
	if start < 0 {
		return nil
	}
	rest := body[start+len(marker):]
	rest = rest[:strings.Index(rest, "</ul>")]

	var items []string
	for _, chunk := range strings.Split(rest, "<li>")[1:] {
		end := strings.Index(chunk, "</li>")
		if end < 0 {
			continue
		}
		items = append(items, strings.TrimSpace(chunk[:end]))
	}
	return items
}

func TestSeedAdmin_OnlyOnEmptyStore(t *testing.T) {
	app := newTestApp(t)
	cfg := config.Config{AdminUsername: "other", AdminPassword: "pw"}

	require.NoError(t, seedAdmin(context.Background(), app.users, cfg))

	n, err := app.users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = app.users.GetByUsername(context.Background(), "other")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
