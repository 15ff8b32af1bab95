// Package render synthesizes the static social-card document served to
// crawlers. All interpolated values pass through html/template's contextual
// escaping; the document contains no script.
package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/JakeFAU/landing-preview/internal/preview"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultSiteName = "Twitter OG Test"
	DefaultHomePath = "/"
)

//go:embed document.html.tmpl
var documentSource string

// Config controls the constant parts of the document.
type Config struct {
	SiteName string
	HomePath string
}

// Renderer renders preview.Document values.
type Renderer struct {
	cfg  Config
	tmpl *template.Template
}

type view struct {
	preview.Document
	SiteName string
	HomePath string
}

// New parses the document template.
func New(cfg Config) (*Renderer, error) {
	if cfg.SiteName == "" {
		cfg.SiteName = DefaultSiteName
	}
	if cfg.HomePath == "" {
		cfg.HomePath = DefaultHomePath
	}
	tmpl, err := template.New("document").Parse(documentSource)
	if err != nil {
		return nil, fmt.Errorf("parse document template: %w", err)
	}
	return &Renderer{cfg: cfg, tmpl: tmpl}, nil
}

// Render produces the full HTML document for doc.
func (r *Renderer) Render(doc preview.Document) (string, error) {
	var b strings.Builder
	if err := r.tmpl.Execute(&b, view{Document: doc, SiteName: r.cfg.SiteName, HomePath: r.cfg.HomePath}); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return b.String(), nil
}
