package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/picopico/internal/auth"
	"github.com/crucial707/picopico/internal/config"
	"github.com/crucial707/picopico/internal/db"
	"github.com/crucial707/picopico/internal/handlers"
	"github.com/crucial707/picopico/internal/logging"
	"github.com/crucial707/picopico/internal/middleware"
	"github.com/crucial707/picopico/internal/repo"
	"github.com/crucial707/picopico/internal/stock"
	"github.com/crucial707/picopico/internal/views"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Schema first, then the pool the handlers use.
	if err := db.Run(cfg); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	database, err := db.Connect(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.Info("connected to database", "driver", cfg.DBDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedAdmin(ctx, repo.NewUserRepo(database), cfg); err != nil {
		slog.Error("seed admin failed", "error", err)
		os.Exit(1)
	}

	router, err := newRouter(database, cfg)
	if err != nil {
		slog.Error("build router failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "tls", cfg.TLSEnabled())
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

// newRouter wires stores, session manager and handlers onto a chi router.
// The stock ledger lives as long as the returned handler.
func newRouter(database *sql.DB, cfg config.Config) (http.Handler, error) {
	renderer, err := views.New()
	if err != nil {
		return nil, err
	}

	userRepo := repo.NewUserRepo(database)
	incidentRepo := repo.NewIncidentRepo(database)
	ledger := stock.NewLedger(stock.AllowNegative(cfg.StockAllowNegative))

	sessions := auth.NewManager(
		userRepo,
		[]byte(cfg.SecretKey),
		time.Duration(cfg.SessionHours)*time.Hour,
		cfg.TLSEnabled(),
	)

	authH := &handlers.AuthHandler{Sessions: sessions, Views: renderer}
	userH := &handlers.UserHandler{Repo: userRepo, Views: renderer}
	incidentH := &handlers.IncidentHandler{Repo: incidentRepo, Types: cfg.IncidentTypes, Views: renderer}
	stockH := &handlers.StockHandler{Ledger: ledger, Views: renderer}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	// Health (no auth, no templates)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := database.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public
	r.Get("/login", authH.LoginForm)
	r.Post("/login", authH.Login)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessions))
		r.Get("/", authH.Index)
		r.Get("/logout", authH.Logout)
		r.Get("/incidencias", incidentH.ListIncidents)
		r.Post("/incidencias", incidentH.CreateIncident)
		r.Get("/stock", stockH.ListStock)
		r.Post("/stock", stockH.AddStock)

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/usuarios", userH.ListUsers)
			r.Post("/usuarios", userH.CreateUser)
			r.Get("/usuarios/eliminar/{id}", userH.DeleteUser)
		})
	})

	return r, nil
}

// seedAdmin creates the configured administrator when no account exists yet.
func seedAdmin(ctx context.Context, users *repo.UserRepo, cfg config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}
	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	u, err := users.Create(ctx, cfg.AdminUsername, cfg.AdminPassword, true)
	if err != nil {
		return err
	}
	slog.Info("seeded administrator", "user_id", u.ID, "username", u.Username)
	return nil
}
