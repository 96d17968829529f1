package models

import "time"

// StatusOpen is the status every incident starts in.
const StatusOpen = "Open"

// DefaultIncidentTypes is the fixed set offered in the incident form.
var DefaultIncidentTypes = []string{
	"Falta de stock",
	"Pedido no servido",
	"Producto dañado",
	"Error de preparación",
	"Otro",
}

type Incident struct {
	ID          int       `json:"id"`
	Type        string    `json:"type"`
	Product     string    `json:"product"`
	Description string    `json:"description"`
	ReportedBy  string    `json:"reported_by"`
	CreatedAt   time.Time `json:"created_at"`
	Status      string    `json:"status"`
}

// NewIncident holds the caller-supplied fields of an incident.
type NewIncident struct {
	Type        string
	Product     string
	Description string
	ReportedBy  string
}
