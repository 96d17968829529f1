package handlers

import (
	"errors"
	"net/http"

	"github.com/crucial707/picopico/internal/metrics"
	"github.com/crucial707/picopico/internal/middleware"
	"github.com/crucial707/picopico/internal/models"
	"github.com/crucial707/picopico/internal/stock"
	"github.com/crucial707/picopico/internal/views"
)

// StockHandler serves the in-memory stock list.
type StockHandler struct {
	Ledger *stock.Ledger
	Views  *views.Renderer
}

// ListStock shows the ledger in insertion order.
func (h *StockHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "", "", "")
}

// AddStock appends a product/quantity line.
func (h *StockHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w)
		return
	}
	name := r.PostFormValue("nombre")
	qty := r.PostFormValue("cantidad")

	if _, err := h.Ledger.Add(name, qty); err != nil {
		if errors.Is(err, models.ErrValidation) {
			h.render(w, r, http.StatusBadRequest, validationMessage(err), name, qty)
			return
		}
		serverError(w, r, err)
		return
	}
	metrics.SetStockEntries(h.Ledger.Len())
	http.Redirect(w, r, "/stock", http.StatusFound)
}

func (h *StockHandler) render(w http.ResponseWriter, r *http.Request, status int, msg, name, qty string) {
	me, _ := middleware.CurrentUser(r.Context())
	h.Views.Page(w, status, "stock.html", me, map[string]interface{}{
		"Error":    msg,
		"Entries":  h.Ledger.List(),
		"Nombre":   name,
		"Cantidad": qty,
	})
}
