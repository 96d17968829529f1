// Package views renders the server-side HTML pages. Every page except the
// login form is wrapped in the shared layout with the navigation bar.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/picopico/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	layoutFile = "layout.html"
	loginFile  = "login.html"
)

var funcs = template.FuncMap{
	"fecha": func(t time.Time) string { return t.Local().Format("02/01/2006 15:04") },
}

// Renderer holds the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every embedded page. Pages other than the login form are
// combined with the layout.
func New() (*Renderer, error) {
	names, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, path := range names {
		name := path[len("templates/"):]
		if name == layoutFile {
			continue
		}
		files := []string{path}
		if name != loginFile {
			files = []string{"templates/" + layoutFile, path}
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Page renders the named page with status. user drives the navigation bar and
// is exposed to the template as .User; data keys are merged alongside it.
func (r *Renderer) Page(w http.ResponseWriter, status int, name string, user *models.User, data map[string]interface{}) {
	t, ok := r.pages[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	view := map[string]interface{}{"User": user}
	for k, v := range data {
		view[k] = v
	}

	root := "layout"
	if name == loginFile {
		root = "login"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, root, view); err != nil {
		slog.Error("template execute", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
