// Package handler contains the HTTP handlers of the game store. Handlers
// parse requests, call the service layer and render either an HTML page or
// a JSON body. They hold no business logic.
package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sakif/game-store/internal/auth"
	"github.com/sakif/game-store/internal/model"
	"github.com/sakif/game-store/internal/session"
)

// baseTemplate is the layout every page template fills in.
const baseTemplate = "base.html"

// Page is the value every template executes against.
type Page struct {
	Title    string
	Flashes  []string
	LoggedIn bool
	Data     any
}

// Renderer holds one parsed template set per page: the layout plus the
// page file, so each page's "content" block stays separate. Templates are
// parsed once at startup.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

var templateFuncs = template.FuncMap{
	"mainPhoto": func(g model.Game) string {
		return "/static/image/" + g.PhotoDir + "/" + model.MainPhoto
	},
	"photo": func(g model.Game, name string) string {
		return "/static/image/" + g.PhotoDir + "/" + name
	},
	"stars": func() []int { return []int{1, 2, 3, 4, 5} },
}

// NewRenderer parses every *.html file in dir against base.html.
func NewRenderer(dir string, logger *slog.Logger) (*Renderer, error) {
	base := filepath.Join(dir, baseTemplate)
	files, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := filepath.Base(file)
		if name == baseTemplate {
			continue
		}
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFiles(base, file)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[strings.TrimSuffix(name, ".html")] = tmpl
	}
	if _, ok := pages["error"]; !ok {
		return nil, fmt.Errorf("template dir %s has no error.html", dir)
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Render executes page inside the layout. Queued flash messages are
// consumed here, so they show on exactly one page.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p := Page{Title: title, LoggedIn: auth.IsLoggedIn(r), Data: data}
	if sess := session.FromContext(r.Context()); sess != nil {
		p.Flashes = sess.PopFlashes()
	}

	// Render into a buffer first so a failing template still yields a clean 500.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", p); err != nil {
		rd.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Error renders error.html for err with the mapped status.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, _, message := classify(err)
	if status == http.StatusInternalServerError {
		rd.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	rd.Render(w, r, status, "error", http.StatusText(status), struct {
		Status  int
		Message string
	}{status, message})
}

// NotFound renders the 404 page for unrouted paths.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, http.StatusNotFound, "error", http.StatusText(http.StatusNotFound), struct {
		Status  int
		Message string
	}{http.StatusNotFound, "Page not found"})
}
