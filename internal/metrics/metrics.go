package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LoginAttempts counts login form submissions by result (success, failure, error).
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picopico_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	// IncidentsCreated counts reported incidents by type.
	IncidentsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picopico_incidents_created_total",
			Help: "Incidents reported by type",
		},
		[]string{"type"},
	)

	// StockEntries is the current size of the in-memory stock ledger.
	StockEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "picopico_stock_entries",
			Help: "Entries currently held in the in-memory stock ledger",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, LoginAttempts, IncidentsCreated, StockEntries)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /usuarios/eliminar/12 -> /usuarios/eliminar/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncLogin increments the login counter for result.
func IncLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}

// IncIncident increments the incident counter for incidentType.
func IncIncident(incidentType string) {
	IncidentsCreated.WithLabelValues(incidentType).Inc()
}

// SetStockEntries publishes the ledger size.
func SetStockEntries(n int) {
	StockEntries.Set(float64(n))
}
