package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/microblog/internal/config"
	"github.com/saltyorg/microblog/internal/database"
	"github.com/saltyorg/microblog/internal/web/flash"
	"github.com/saltyorg/microblog/internal/web/handlers"
	"github.com/saltyorg/microblog/internal/web/middleware"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Server represents the web server
type Server struct {
	cfg        *config.Config
	allowedNet *net.IPNet
	router     *chi.Mux
	templates  map[string]*template.Template
	handlers   *handlers.Handlers
}

// NewServer creates a new web server. cfg must already be validated.
func NewServer(cfg *config.Config, connector *database.Connector, signer *flash.Signer) (*Server, error) {
	allowedNet, err := cfg.AllowedNet()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        cfg,
		allowedNet: allowedNet,
		router:     chi.NewRouter(),
	}

	if err := s.loadTemplates(); err != nil {
		return nil, err
	}
	s.handlers = handlers.New(connector, s.templates, signer, cfg.SecureCookies)

	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Router returns the HTTP handler serving all routes
func (s *Server) Router() http.Handler {
	return s.router
}

// templateFuncMap returns the common template functions
func templateFuncMap() template.FuncMap {
	return template.FuncMap{
		// Entry bodies may contain markup and are rendered as-is
		"unescaped": func(s string) template.HTML {
			return template.HTML(s)
		},
	}
}

// loadTemplates loads all HTML templates
// Each page template is parsed with the base template and partials
func (s *Server) loadTemplates() error {
	s.templates = make(map[string]*template.Template)
	funcMap := templateFuncMap()

	pageTemplates := []string{
		"show_entries.html",
		"edit_entry.html",
	}

	for _, page := range pageTemplates {
		tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS,
			"templates/base.html",
			"templates/partials/*.html",
			"templates/"+page,
		)
		if err != nil {
			return fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		s.templates[page] = tmpl
	}
	return nil
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() error {
	r := s.router

	r.Use(chimiddleware.RequestID)
	// AllowSubnet must come BEFORE RealIP so we check the actual connection source
	r.Use(middleware.AllowSubnet(s.allowedNet))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.cfg.Timeouts.Request))

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("failed to setup static files: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	h := s.handlers
	r.Get("/", h.Wrap(h.ShowEntries))
	r.Post("/add", h.Wrap(h.AddEntry))
	r.Post("/show_selected", h.Wrap(h.ShowSelected))
	r.Post("/delete_entry", h.Wrap(h.DeleteEntry))
	r.Post("/edit_entry", h.Wrap(h.EditEntry))
	r.Post("/update_edited_entry", h.Wrap(h.UpdateEditedEntry))

	return nil
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Addr()

	server := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: s.cfg.Timeouts.Read,
		IdleTimeout: s.cfg.Timeouts.Idle,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeouts.Shutdown)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
