// Package ogtags extracts social-card meta tags from an HTML document the way
// link-preview crawlers read them.
package ogtags

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Tags holds the meta values found in a document, keyed by their property or
// name attribute. The first occurrence of a key wins.
type Tags struct {
	Title string
	Meta  map[string]string
}

// Value returns the value for key or "".
func (t Tags) Value(key string) string {
	return t.Meta[key]
}

// Missing lists the keys absent from t.
func (t Tags) Missing(keys ...string) []string {
	var out []string
	for _, k := range keys {
		if _, ok := t.Meta[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// CardKeys are the Open Graph and Twitter keys a complete card carries.
var CardKeys = []string{
	"og:title",
	"og:description",
	"og:image",
	"og:url",
	"og:type",
	"og:site_name",
	"twitter:card",
	"twitter:title",
	"twitter:description",
	"twitter:image",
	"description",
	"robots",
}

// Extract parses body and collects <meta property|name content> pairs.
func Extract(body []byte) (Tags, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Tags{}, fmt.Errorf("parse html: %w", err)
	}
	tags := Tags{
		Title: strings.TrimSpace(doc.Find("head > title").First().Text()),
		Meta:  map[string]string{},
	}
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, ok := s.Attr("property")
		if !ok {
			key, ok = s.Attr("name")
		}
		if !ok || key == "" {
			return
		}
		content, ok := s.Attr("content")
		if !ok {
			return
		}
		if _, seen := tags.Meta[key]; !seen {
			tags.Meta[key] = content
		}
	})
	return tags, nil
}
