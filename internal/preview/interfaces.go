package preview

import (
	"context"
	"time"
)

// Classifier decides whether an identification string belongs to a crawler.
type Classifier interface {
	Classify(identification string) Classification
}

// Resolver maps an Identifier and the page URL it was reached at to its
// Metadata. Implementations must be pure.
type Resolver interface {
	Resolve(id Identifier, pageURL string) Metadata
}

// Document carries everything the Renderer needs for a crawler response.
type Document struct {
	Metadata       Metadata
	CurrentURL     string
	Username       string
	ID             string
	Identification string
	Classification Classification
}

// Renderer synthesizes the crawler-facing HTML document.
type Renderer interface {
	Render(doc Document) (string, error)
}

// Fetcher fetches a URL and returns the response plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// IDSource mints display identifiers for generated landing URLs.
type IDSource interface {
	NewID() int
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reports wall-clock time in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })
