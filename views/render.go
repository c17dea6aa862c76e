// Package views renders the HTML pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"notepost/pkg/logger"
	"notepost/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	ShowEntries = "show_entries.html"
	Login       = "login.html"
)

// DefaultTitle heads every page.
const DefaultTitle = "Notepost"

// State is the per-request client state every page shows.
type State interface {
	IsAuthenticated(r *http.Request) bool
	ConsumeFlashes(w http.ResponseWriter, r *http.Request) []string
	CSRFToken(r *http.Request) string
}

// Page is the data handed to a template.
type Page struct {
	Title     string
	LoggedIn  bool
	Flashes   []string
	CSRFToken string

	Entries []store.Entry

	// Login form.
	Error    string
	Username string
}

// Renderer executes the page templates.
type Renderer struct {
	state State
	pages map[string]*template.Template
}

// New parses the embedded templates.
func New(state State) (*Renderer, error) {
	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{ShowEntries, Login} {
		t, err := template.Must(layout.Clone()).ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{state: state, pages: pages}, nil
}

// Render writes the named page. Pending flashes are consumed and shown
// together with any inline messages produced by the current request.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, name string, page Page, inline ...string) {
	t, ok := v.pages[name]
	if !ok {
		logger.Sugar.Errorf("Unknown template %q", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if page.Title == "" {
		page.Title = DefaultTitle
	}
	page.LoggedIn = v.state.IsAuthenticated(r)
	page.CSRFToken = v.state.CSRFToken(r)
	page.Flashes = append(v.state.ConsumeFlashes(w, r), inline...)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		logger.Sugar.Errorf("Failed to render %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
