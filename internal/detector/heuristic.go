// Package detector classifies requests as crawler- or human-originated from
// their identification string.
package detector

import (
	"strings"

	"github.com/JakeFAU/landing-preview/internal/preview"
)

// DefaultSignatures are the crawler fragments matched against user agents.
var DefaultSignatures = []string{
	"twitterbot",
	"facebookexternalhit",
	"linkedinbot",
	"whatsapp",
	"telegrambot",
	"slackbot",
	"discordbot",
	"googlebot",
	"bingbot",
}

// DefaultUserAgents holds one representative identification string per
// default signature, in the same order.
var DefaultUserAgents = []string{
	"Twitterbot/1.0",
	"facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)",
	"LinkedInBot/1.0 (compatible; Mozilla/5.0; Apache-HttpClient +http://www.linkedin.com)",
	"WhatsApp/2.23.20.0",
	"TelegramBot (like TwitterBot)",
	"Slackbot-LinkExpanding 1.0 (+https://api.slack.com/robots)",
	"Mozilla/5.0 (compatible; Discordbot/2.0; +https://discordapp.com)",
	"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
	"Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)",
}

// Heuristic matches identification strings against known crawler signatures.
// It is not a security boundary: spoofed user agents classify as crawlers.
type Heuristic struct {
	signatures []string
}

// NewHeuristic creates a detector. Empty signatures are discarded and an
// empty list falls back to DefaultSignatures.
func NewHeuristic(signatures ...string) *Heuristic {
	lower := make([]string, 0, len(signatures))
	for _, sig := range signatures {
		sig = strings.ToLower(strings.TrimSpace(sig))
		if sig == "" {
			continue
		}
		lower = append(lower, sig)
	}
	if len(lower) == 0 {
		lower = append(lower, DefaultSignatures...)
	}
	return &Heuristic{signatures: lower}
}

// Classify reports whether identification contains any signature,
// case-insensitively. An empty string is treated as human.
func (h *Heuristic) Classify(identification string) preview.Classification {
	if identification == "" {
		return preview.Classification{}
	}
	ua := strings.ToLower(identification)
	for _, sig := range h.signatures {
		if strings.Contains(ua, sig) {
			return preview.Classification{IsAutomated: true}
		}
	}
	return preview.Classification{}
}

// Signatures returns the normalized signature list.
func (h *Heuristic) Signatures() []string {
	out := make([]string, len(h.signatures))
	copy(out, h.signatures)
	return out
}
