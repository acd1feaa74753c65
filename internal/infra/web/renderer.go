// Package web renders the dashboard's HTML pages from embedded templates.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
)

// Page names.
const (
	PageLogin     = "login.html"
	PageDashboard = "dashboard.html"
)

// ErrUnknownPage is returned when rendering a page that has no template.
var ErrUnknownPage = errors.New("unknown page")

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static/*
var staticFiles embed.FS

// Renderer executes the page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates.
// funcs may override the default template functions:
//   - iconSrc(icon string) string: image URL for an icon, or "" to render the icon as text
func NewRenderer(funcs template.FuncMap) (*Renderer, error) {
	merged := template.FuncMap{
		"iconSrc": func(string) string { return "" },
	}

	for name, fn := range funcs {
		merged[name] = fn
	}

	renderer := &Renderer{pages: make(map[string]*template.Template)}

	for _, page := range []string{PageLogin, PageDashboard} {
		tmpl, err := template.New(page).Funcs(merged).ParseFS(templateFiles, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}

		renderer.pages[page] = tmpl
	}

	return renderer, nil
}

// Render executes the named page with data and writes it with the given status.
// Nothing is written if the template fails.
func (r *Renderer) Render(w http.ResponseWriter, page string, status int, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, data); err != nil {
		return fmt.Errorf("execute %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}

// StaticHandler serves the embedded stylesheet and other assets.
// Mount it under a prefix with http.StripPrefix.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // static is embedded, Sub cannot fail
	}

	return http.FileServerFS(sub)
}

// LoginPage is the data for the login form.
type LoginPage struct {
	Title string
	Error string
}

// DashboardPage is the data for the service list.
type DashboardPage struct {
	Title    string
	Services []ServiceView
}

// ServiceView is a single service as shown on the dashboard.
type ServiceView struct {
	Name        string
	URL         string
	Icon        string
	Description string
}
