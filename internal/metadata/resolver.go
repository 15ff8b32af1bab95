// Package metadata resolves the social-card title, description and image for
// a landing identifier. It is the only place these values are computed.
package metadata

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JakeFAU/landing-preview/internal/preview"
	"github.com/JakeFAU/landing-preview/internal/registry"
)

// TitleSuffix follows the capitalized slug in every title.
const TitleSuffix = " Landing Page"

// Resolver derives Metadata from a Registry.
type Resolver struct {
	registry *registry.Registry
}

// NewResolver creates a Resolver over reg.
func NewResolver(reg *registry.Registry) *Resolver {
	return &Resolver{registry: reg}
}

// Resolve returns the metadata for id. Unknown slugs use the first image.
func (r *Resolver) Resolve(id preview.Identifier, pageURL string) preview.Metadata {
	return preview.Metadata{
		Title:       Title(id.Slug),
		Description: Description(id.Username, id.ID),
		Image:       r.Image(id.Slug),
		URL:         pageURL,
	}
}

// Image returns the image aligned with slug's registry position.
func (r *Resolver) Image(slug string) string {
	idx := r.registry.SlugIndex(slug)
	if idx < 0 {
		idx = 0
	}
	return r.registry.ImageAt(idx)
}

// Title upper-cases the first character of slug and appends TitleSuffix.
func Title(slug string) string {
	first, size := utf8.DecodeRuneInString(slug)
	if size == 0 {
		return TitleSuffix
	}
	var b strings.Builder
	b.Grow(len(slug) + len(TitleSuffix))
	b.WriteRune(unicode.ToUpper(first))
	b.WriteString(slug[size:])
	b.WriteString(TitleSuffix)
	return b.String()
}

// Description interpolates username and id into the fixed template.
func Description(username, id string) string {
	return fmt.Sprintf("Exclusive landing page for %s - ID: %s", username, id)
}
