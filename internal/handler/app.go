// Package handler contains the HTTP request handlers. Handlers parse
// requests, call into the service layer and write responses; business
// rules live in internal/service.
package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// AppHandler serves the single-page app shell. Client-side routing handles
// everything under /watch, /channel and friends, so the shell is returned
// for any non-API path.
type AppHandler struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewAppHandler parses the shell templates once at startup.
func NewAppHandler(templateDir string, logger *slog.Logger) (*AppHandler, error) {
	tmpl, err := template.ParseFiles(
		filepath.Join(templateDir, "base.html"),
		filepath.Join(templateDir, "app.html"),
	)
	if err != nil {
		return nil, err
	}

	return &AppHandler{templates: tmpl, logger: logger}, nil
}

// HandleApp renders the app shell.
func (h *AppHandler) HandleApp(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "TikTik",
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
