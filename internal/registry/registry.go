// Package registry holds the read-only test data used to build and resolve
// landing pages: campaign slugs, usernames, and preview images.
package registry

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyRegistry is returned when any of the three sequences is empty.
var ErrEmptyRegistry = errors.New("registry: slugs, usernames and images must be non-empty")

// Registry is immutable after construction. Slug positions index into Images;
// username positions carry no meaning.
type Registry struct {
	slugs     []string
	usernames []string
	images    []string
}

// Data is the serialized form of a Registry, shared by the YAML loader and
// the /api/test-data response.
type Data struct {
	Slugs     []string `json:"slugs" yaml:"slugs"`
	Usernames []string `json:"usernames" yaml:"usernames"`
	Images    []string `json:"images" yaml:"images"`
}

// New copies the supplied sequences into a Registry.
func New(slugs, usernames, images []string) (*Registry, error) {
	if len(slugs) == 0 || len(usernames) == 0 || len(images) == 0 {
		return nil, ErrEmptyRegistry
	}
	return &Registry{
		slugs:     cloneStrings(slugs),
		usernames: cloneStrings(usernames),
		images:    cloneStrings(images),
	}, nil
}

// LoadFile reads a YAML registry from path.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse registry file: %w", err)
	}
	reg, err := New(data.Slugs, data.Usernames, data.Images)
	if err != nil {
		return nil, fmt.Errorf("registry file %s: %w", path, err)
	}
	return reg, nil
}

// Slugs returns a copy of the slug sequence.
func (r *Registry) Slugs() []string { return cloneStrings(r.slugs) }

// Usernames returns a copy of the username sequence.
func (r *Registry) Usernames() []string { return cloneStrings(r.usernames) }

// Images returns a copy of the image sequence.
func (r *Registry) Images() []string { return cloneStrings(r.images) }

// Data returns a serializable snapshot.
func (r *Registry) Data() Data {
	return Data{
		Slugs:     r.Slugs(),
		Usernames: r.Usernames(),
		Images:    r.Images(),
	}
}

// SlugIndex reports the position of slug, or -1 if unknown.
func (r *Registry) SlugIndex(slug string) int {
	for i, s := range r.slugs {
		if s == slug {
			return i
		}
	}
	return -1
}

// ImageAt returns the image at position i. Positions outside the image
// sequence fall back to the first image.
func (r *Registry) ImageAt(i int) string {
	if i < 0 || i >= len(r.images) {
		return r.images[0]
	}
	return r.images[i]
}

func cloneStrings(src []string) []string {
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}
