// Package stock keeps the process-lifetime stock list. Entries are not persisted
// and a restart yields an empty ledger.
package stock

import (
	"strconv"
	"strings"
	"sync"

	"github.com/crucial707/picopico/internal/models"
)

// Ledger is an append-only list of stock entries safe for concurrent use.
type Ledger struct {
	mu            sync.RWMutex
	entries       []models.StockEntry
	allowNegative bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// AllowNegative controls whether quantities below zero are accepted (default true).
func AllowNegative(ok bool) Option {
	return func(l *Ledger) { l.allowNegative = ok }
}

func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{allowNegative: true}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Add parses quantity as an integer and appends a new entry.
// Same-name entries are kept separately, never aggregated.
func (l *Ledger) Add(name, quantity string) (models.StockEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.StockEntry{}, models.NewValidationError("nombre", "required")
	}
	qty, err := strconv.Atoi(strings.TrimSpace(quantity))
	if err != nil {
		return models.StockEntry{}, models.NewValidationError("cantidad", "must be an integer")
	}
	if qty < 0 && !l.allowNegative {
		return models.StockEntry{}, models.NewValidationError("cantidad", "must not be negative")
	}

	e := models.StockEntry{Name: name, Quantity: qty}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	return e, nil
}

// List returns a copy of the entries in insertion order.
func (l *Ledger) List() []models.StockEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.StockEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
