// Package dispatcher decides how a landing request is answered: crawlers get
// the rendered social-card document, humans get redirected to the UI.
package dispatcher

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/JakeFAU/landing-preview/internal/landing"
	"github.com/JakeFAU/landing-preview/internal/preview"
)

// PreviewParam is the query parameter carrying the landing path on redirects.
const PreviewParam = "preview"

// Request is a decoded landing request.
type Request struct {
	Identifier     preview.Identifier
	Identification string
	CurrentURL     string
}

// Outcome is the response the caller should write. Exactly one of Body or
// Location is set.
type Outcome struct {
	Classification preview.Classification
	Status         int
	Body           string
	Location       string
	Metadata       preview.Metadata
}

// Dispatcher routes landing requests. It holds no mutable state.
type Dispatcher struct {
	classifier preview.Classifier
	resolver   preview.Resolver
	renderer   preview.Renderer
	homePath   string
}

// New creates a Dispatcher. homePath is the UI entry route humans are sent to.
func New(classifier preview.Classifier, resolver preview.Resolver, renderer preview.Renderer, homePath string) *Dispatcher {
	if homePath == "" {
		homePath = "/"
	}
	return &Dispatcher{
		classifier: classifier,
		resolver:   resolver,
		renderer:   renderer,
		homePath:   homePath,
	}
}

// Dispatch classifies req and builds the matching Outcome.
func (d *Dispatcher) Dispatch(req Request) (Outcome, error) {
	class := d.classifier.Classify(req.Identification)
	if !class.IsAutomated {
		return Outcome{
			Classification: class,
			Status:         http.StatusFound,
			Location:       d.RedirectLocation(req.Identifier),
		}, nil
	}

	md := d.resolver.Resolve(req.Identifier, req.CurrentURL)
	body, err := d.renderer.Render(preview.Document{
		Metadata:       md,
		CurrentURL:     req.CurrentURL,
		Username:       req.Identifier.Username,
		ID:             req.Identifier.ID,
		Identification: req.Identification,
		Classification: class,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("dispatch crawler document: %w", err)
	}
	return Outcome{
		Classification: class,
		Status:         http.StatusOK,
		Body:           body,
		Metadata:       md,
	}, nil
}

// RedirectLocation builds {home}?preview=landing-{slug}/{username}/{id}.
// Segments are query-escaped individually so the separators stay literal.
func (d *Dispatcher) RedirectLocation(id preview.Identifier) string {
	value := landing.Encode(
		url.QueryEscape(id.Slug),
		url.QueryEscape(id.Username),
		url.QueryEscape(id.ID),
	)
	return d.homePath + "?" + PreviewParam + "=" + value
}
