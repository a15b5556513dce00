package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/microblog/internal/apperr"
	"github.com/saltyorg/microblog/internal/database"
	"github.com/saltyorg/microblog/internal/web/flash"
)

// HandlerFunc is an HTTP handler that is handed the request's database lease
// and reports failures by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, lease *database.Lease) error

// Handlers contains all HTTP handlers
type Handlers struct {
	connector     *database.Connector
	templates     map[string]*template.Template
	flash         *flash.Signer
	secureCookies bool
}

// New creates a new Handlers instance
func New(connector *database.Connector, templates map[string]*template.Template, signer *flash.Signer, secureCookies bool) *Handlers {
	return &Handlers{
		connector:     connector,
		templates:     templates,
		flash:         signer,
		secureCookies: secureCookies,
	}
}

// Wrap adapts fn to an http.HandlerFunc. Every request gets its own lease,
// released when the request ends whether fn succeeded, failed or panicked.
func (h *Handlers) Wrap(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lease := h.connector.Lease()
		defer func() {
			if err := lease.Release(); err != nil {
				log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("Failed to release database connection")
			}
		}()

		if err := fn(w, r, lease); err != nil {
			h.fail(w, r, err)
		}
	}
}

// fail writes the generic failure response for err
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)

	event := log.Error().Stack()
	if status < http.StatusInternalServerError {
		event = log.Warn()
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("Request failed")

	if status == http.StatusInternalServerError {
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, http.StatusText(status), status)
}

// PageData contains common data for all pages
type PageData struct {
	Title   string
	Flashes []string
	Content any
}

// render renders a page template. notice is shown after any flash carried over from
// the previous request; pass "" for none.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data any, notice string) error {
	pageData := PageData{
		Title:   "Microblog",
		Content: data,
	}

	if msg, ok := h.takeFlash(w, r); ok {
		pageData.Flashes = append(pageData.Flashes, msg)
	}
	if notice != "" {
		pageData.Flashes = append(pageData.Flashes, notice)
	}

	tmpl, ok := h.templates[name]
	if !ok {
		log.Error().Str("template", name).Msg("Template not found")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}

	// Render into a buffer so a template error still yields a clean 500
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", pageData); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
	return nil
}

// takeFlash reads and clears the flash cookie. Invalid or expired cookies are dropped.
func (h *Handlers) takeFlash(w http.ResponseWriter, r *http.Request) (string, bool) {
	cookie, err := r.Cookie(flash.CookieName)
	if err != nil {
		return "", false
	}

	clear := &http.Cookie{Name: flash.CookieName, MaxAge: -1, Path: "/", HttpOnly: true}
	h.applyCookieSecurity(clear)
	http.SetCookie(w, clear)

	msg, err := h.flash.Verify(cookie.Value)
	if err != nil {
		log.Debug().Err(err).Msg("Discarding flash cookie")
		return "", false
	}
	return msg, true
}

// setFlash stores a signed flash message for the next rendered page
func (h *Handlers) setFlash(w http.ResponseWriter, message string) error {
	token, err := h.flash.Sign(message)
	if err != nil {
		return err
	}

	c := &http.Cookie{
		Name:     flash.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.flash.TTL().Seconds()),
		HttpOnly: true,
	}
	h.applyCookieSecurity(c)
	http.SetCookie(w, c)
	return nil
}

// redirect redirects to a URL
func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// applyCookieSecurity sets Secure/SameSite defaults based on configuration.
func (h *Handlers) applyCookieSecurity(c *http.Cookie) {
	if !h.secureCookies {
		if c.SameSite == 0 {
			c.SameSite = http.SameSiteLaxMode
		}
		return
	}
	c.Secure = true
	if c.SameSite == 0 {
		c.SameSite = http.SameSiteStrictMode
	}
}
