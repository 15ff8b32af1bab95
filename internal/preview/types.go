package preview

import (
	"net/http"
	"time"
)

// Identifier is the (slug, username, id) triple embedded in a landing path.
// ID is kept as a string because it is only ever interpolated into text.
type Identifier struct {
	Slug     string
	Username string
	ID       string
}

// Metadata is the social-card data resolved for an Identifier.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	URL         string `json:"url"`
}

// Classification is the result of inspecting an identification string.
type Classification struct {
	IsAutomated bool
}

// Label returns the display label used on crawler documents.
func (c Classification) Label() string {
	if c.IsAutomated {
		return "BOT REQUEST"
	}
	return "HUMAN REQUEST"
}

// Outcome names for logs and metrics.
const (
	OutcomeCrawler = "crawler"
	OutcomeHuman   = "human"
)

// Outcome returns the metric label for the classification.
func (c Classification) Outcome() string {
	if c.IsAutomated {
		return OutcomeCrawler
	}
	return OutcomeHuman
}

// FetchRequest describes an outbound (or simulated) fetch.
type FetchRequest struct {
	URL             string
	UserAgent       string
	Headers         http.Header
	FollowRedirects bool
}

// FetchResponse captures the observable parts of a fetch.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}
