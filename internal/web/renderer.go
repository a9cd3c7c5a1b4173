// Package web holds the HTML front end: templates, static assets and flash messages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/labstack/echo/v4"

	"webshot/internal/storage"
	"webshot/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// IndexPage is the data rendered by the index template
type IndexPage struct {
	Artifacts []storage.Artifact
	Flashes   []Flash
}

// Renderer implements echo.Renderer over the embedded templates
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"bytes": utils.FormatBytes,
		"stamp": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
		"isPDF": func(a storage.Artifact) bool { return a.Type == "pdf" },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render executes the named template
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// StaticFiles returns the embedded static asset tree rooted at static/
func StaticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
