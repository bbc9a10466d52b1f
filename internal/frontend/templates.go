package frontend

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed views/*.html
var templateFS embed.FS

const viewsPattern = "views/*.html"

// TemplateRenderer renders the embedded page views.
type TemplateRenderer struct {
	templates *template.Template
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	templates, err := template.New("").ParseFS(templateFS, viewsPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse views: %w", err)
	}
	return &TemplateRenderer{templates: templates}, nil
}

func (t *TemplateRenderer) Render(w io.Writer, name string, data any) error {
	return t.templates.ExecuteTemplate(w, name, data)
}
