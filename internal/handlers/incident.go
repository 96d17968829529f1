package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/crucial707/picopico/internal/metrics"
	"github.com/crucial707/picopico/internal/middleware"
	"github.com/crucial707/picopico/internal/models"
	"github.com/crucial707/picopico/internal/views"
)

// IncidentStore is the incident log used by the incident page.
type IncidentStore interface {
	Create(ctx context.Context, in models.NewIncident) (*models.Incident, error)
	List(ctx context.Context) ([]models.Incident, error)
}

// IncidentHandler serves the incident list and report form.
type IncidentHandler struct {
	Repo  IncidentStore
	Types []string
	Views *views.Renderer
}

// ListIncidents shows every incident, newest first.
func (h *IncidentHandler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "", models.NewIncident{})
}

// CreateIncident records an incident attributed to the session user.
func (h *IncidentHandler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w)
		return
	}

	in := models.NewIncident{
		Type:        r.PostFormValue("tipo"),
		Product:     r.PostFormValue("producto"),
		Description: r.PostFormValue("descripcion"),
		ReportedBy:  actor(r),
	}

	if t := strings.TrimSpace(in.Type); t != "" && !slices.Contains(h.Types, t) {
		h.render(w, r, http.StatusBadRequest, validationMessage(models.NewValidationError("tipo", "unknown type")), in)
		return
	}

	inc, err := h.Repo.Create(r.Context(), in)
	if errors.Is(err, models.ErrValidation) {
		h.render(w, r, http.StatusBadRequest, validationMessage(err), in)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}

	metrics.IncIncident(inc.Type)
	slog.Info("incident created", "incident_id", inc.ID, "type", inc.Type, "reported_by", inc.ReportedBy)
	http.Redirect(w, r, "/incidencias", http.StatusFound)
}

func (h *IncidentHandler) render(w http.ResponseWriter, r *http.Request, status int, msg string, form models.NewIncident) {
	incidents, err := h.Repo.List(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	me, _ := middleware.CurrentUser(r.Context())
	h.Views.Page(w, status, "incidents.html", me, map[string]interface{}{
		"Error":       msg,
		"Types":       h.Types,
		"Incidents":   incidents,
		"Tipo":        form.Type,
		"Producto":    form.Product,
		"Descripcion": form.Description,
	})
}
