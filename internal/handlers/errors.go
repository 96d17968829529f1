package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crucial707/picopico/internal/models"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// MsgSelfDelete is the plain-text refusal returned when an admin targets their own account.
const MsgSelfDelete = "No puedes eliminar tu propio usuario"

// MsgBadCredentials is shown inline on the login form.
const MsgBadCredentials = "Usuario o contraseña incorrectos"

var fieldMessages = map[string]string{
	"username":    "El usuario es obligatorio",
	"password":    "La contraseña es obligatoria",
	"type":        "El tipo de incidencia es obligatorio",
	"tipo":        "Tipo de incidencia no válido",
	"description": "La descripción es obligatoria",
	"nombre":      "El nombre del producto es obligatorio",
	"cantidad":    "La cantidad debe ser un número entero",
}

// validationMessage returns the user-facing text for a validation error.
func validationMessage(err error) string {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		if msg, ok := fieldMessages[ve.Field]; ok {
			if ve.Field == "cantidad" && ve.Message == "must not be negative" {
				return "La cantidad no puede ser negativa"
			}
			return msg
		}
		return ve.Error()
	}
	return "Datos no válidos"
}

// serverError logs err with the request id and answers a generic 500.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("handler error",
		"request_id", chimw.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
	http.Error(w, ErrMessageInternal, http.StatusInternalServerError)
}

// badForm answers 400 when the request body cannot be parsed as a form.
func badForm(w http.ResponseWriter) {
	http.Error(w, "bad form", http.StatusBadRequest)
}
