package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"adpulse/app"
	"adpulse/internal"
)

//go:embed templates/*
var embeddedFiles embed.FS

// App represents the dashboard application
type App struct {
	router    *chi.Mux
	service   *app.ImpactService
	templates *template.Template
	currency  string
	logger    *internal.Logger
}

// Config holds dashboard application configuration
type Config struct {
	Port     string
	Currency string
}

// NewApp creates a new dashboard application
func NewApp(config Config, service *app.ImpactService) (*App, error) {
	funcMap := template.FuncMap{
		"currency": func(v float64) string { return FormatCurrency(v, config.Currency) },
		"pct":      func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		service:   service,
		templates: templates,
		currency:  config.Currency,
		logger:    internal.DefaultLogger.WithPrefix("ui"),
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)

	a.router.Get("/api/accounts", a.handleListAccounts)
	a.router.Get("/api/accounts/{id}/impact", a.handleAccountImpact)
	a.router.Get("/api/accounts/{id}/export", a.handleAccountExport)
	a.router.Post("/api/accounts/{id}/actions", a.handleUploadActions)
	a.router.Post("/api/normalize", a.handleNormalize)
}

// Router exposes the configured router (used by tests)
func (a *App) Router() http.Handler {
	return a.router
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (a *App) Start(ctx context.Context, port string) error {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: a.router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("dashboard listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
