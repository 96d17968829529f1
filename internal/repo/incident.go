package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/crucial707/picopico/internal/models"
)

// IncidentRepo persists incident reports. Incidents are append-only.
type IncidentRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewIncidentRepo returns an IncidentRepo stamping rows with the wall clock.
func NewIncidentRepo(db *sql.DB) *IncidentRepo {
	return &IncidentRepo{db: db, now: time.Now}
}

// WithClock replaces the timestamp source. Used by tests.
func (r *IncidentRepo) WithClock(now func() time.Time) *IncidentRepo {
	r.now = now
	return r
}

// Create validates and inserts an incident with status Open.
func (r *IncidentRepo) Create(ctx context.Context, in models.NewIncident) (*models.Incident, error) {
	inc := &models.Incident{
		Type:        strings.TrimSpace(in.Type),
		Product:     strings.TrimSpace(in.Product),
		Description: strings.TrimSpace(in.Description),
		ReportedBy:  in.ReportedBy,
		CreatedAt:   r.now().UTC(),
		Status:      models.StatusOpen,
	}
	if inc.Type == "" {
		return nil, models.NewValidationError("type", "required")
	}
	if inc.Description == "" {
		return nil, models.NewValidationError("description", "required")
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO incidents (type, product, description, reported_by, created_at, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		inc.Type, inc.Product, inc.Description, inc.ReportedBy, inc.CreatedAt, inc.Status,
	).Scan(&inc.ID)
	if err != nil {
		return nil, fmt.Errorf("insert incident: %w", err)
	}
	return inc, nil
}

// List returns every incident, newest first. Equal timestamps fall back to id order.
func (r *IncidentRepo) List(ctx context.Context) ([]models.Incident, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, product, description, reported_by, created_at, status
		 FROM incidents ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		var i models.Incident
		if err := rows.Scan(&i.ID, &i.Type, &i.Product, &i.Description, &i.ReportedBy, &i.CreatedAt, &i.Status); err != nil {
			return nil, err
		}
		incidents = append(incidents, i)
	}
	return incidents, rows.Err()
}

// Count returns the number of stored incidents.
func (r *IncidentRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents`).Scan(&n)
	return n, err
}
