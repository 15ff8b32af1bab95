// Package landing encodes landing identifiers into URL paths and parses them
// back out.
package landing

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/JakeFAU/landing-preview/internal/preview"
)

// Prefix is the literal that starts every landing path segment.
const Prefix = "landing-"

// ErrMalformedPath is returned when a path does not have the landing shape.
var ErrMalformedPath = errors.New("landing: path does not match landing-{slug}/{username}/{id}")

var pathPattern = regexp.MustCompile(`^/?landing-([^/]+)/([^/]+)/([^/]+)$`)

// Encode builds the path segment landing-{slug}/{username}/{id} without a
// leading slash.
func Encode(slug, username, id string) string {
	return Prefix + slug + "/" + username + "/" + id
}

// EncodeID is Encode for a numeric id.
func EncodeID(slug, username string, id int) string {
	return Encode(slug, username, strconv.Itoa(id))
}

// Path returns the rooted, percent-escaped path for an identifier. Each
// segment is escaped on its own so reserved characters such as ? # % stay in
// the path; DecodeURL reverses it.
func Path(id preview.Identifier) string {
	return "/" + Encode(url.PathEscape(id.Slug), url.PathEscape(id.Username), url.PathEscape(id.ID))
}

// Decode parses a landing path. A leading slash is optional; the id is not
// validated as numeric.
func Decode(path string) (preview.Identifier, error) {
	m := pathPattern.FindStringSubmatch(path)
	if m == nil {
		return preview.Identifier{}, ErrMalformedPath
	}
	return preview.Identifier{Slug: m[1], Username: m[2], ID: m[3]}, nil
}

// DecodeURL parses an absolute URL or bare path and decodes its path.
func DecodeURL(raw string) (preview.Identifier, error) {
	if strings.TrimSpace(raw) == "" {
		return preview.Identifier{}, ErrMalformedPath
	}
	u, err := url.Parse(raw)
	if err != nil {
		return preview.Identifier{}, fmt.Errorf("%w: %v", ErrMalformedPath, err)
	}
	return Decode(u.Path)
}

// LooksLikeLandingPath reports whether path starts with the landing prefix,
// whatever its segment count.
func LooksLikeLandingPath(path string) bool {
	return strings.HasPrefix(strings.TrimPrefix(path, "/"), Prefix)
}

// URL joins a base such as https://example.com with the escaped path.
func URL(base, slug, username string, id int) string {
	return strings.TrimRight(base, "/") + Path(preview.Identifier{Slug: slug, Username: username, ID: strconv.Itoa(id)})
}
