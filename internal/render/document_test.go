package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/landing-preview/internal/ogtags"
	"github.com/JakeFAU/landing-preview/internal/preview"
)

func sampleDocument() preview.Document {
	return preview.Document{
		Metadata: preview.Metadata{
			Title:       "Quickprofits Landing Page",
			Description: "Exclusive landing page for novelnet - ID: 123456",
			Image:       "https://images.unsplash.com/photo-1?w=1200&h=630&fit=crop",
			URL:         "http://localhost:3001/landing-quickprofits/novelnet/123456",
		},
		CurrentURL:     "http://localhost:3001/landing-quickprofits/novelnet/123456",
		Username:       "novelnet",
		ID:             "123456",
		Identification: "Twitterbot/1.0",
		Classification: preview.Classification{IsAutomated: true},
	}
}

func TestRenderer_EmitsCardTags(t *testing.T) {
	t.Parallel()

	r, err := New(Config{})
	require.NoError(t, err)
	doc := sampleDocument()

	out, err := r.Render(doc)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))

	tags, err := ogtags.Extract([]byte(out))
	require.NoError(t, err)
	require.Empty(t, tags.Missing(ogtags.CardKeys...))
	require.Equal(t, doc.Metadata.Title, tags.Title)
	require.Equal(t, doc.Metadata.Title, tags.Value("og:title"))
	require.Equal(t, doc.Metadata.Description, tags.Value("og:description"))
	require.Equal(t, doc.Metadata.Image, tags.Value("og:image"))
	require.Equal(t, doc.CurrentURL, tags.Value("og:url"))
	require.Equal(t, "website", tags.Value("og:type"))
	require.Equal(t, DefaultSiteName, tags.Value("og:site_name"))
	require.Equal(t, "summary_large_image", tags.Value("twitter:card"))
	require.Equal(t, doc.Metadata.Title, tags.Value("twitter:title"))
	require.Equal(t, doc.Metadata.Description, tags.Value("twitter:description"))
	require.Equal(t, doc.Metadata.Image, tags.Value("twitter:image"))
	require.Equal(t, doc.Metadata.Description, tags.Value("description"))
	require.Equal(t, "index, follow", tags.Value("robots"))

	require.Contains(t, out, "BOT REQUEST")
	require.Contains(t, out, "Twitterbot/1.0")
	require.NotContains(t, out, "<script")
}

func TestRenderer_CustomSiteAndHome(t *testing.T) {
	t.Parallel()

	r, err := New(Config{SiteName: "Preview Lab", HomePath: "/app"})
	require.NoError(t, err)
	doc := sampleDocument()
	doc.Classification = preview.Classification{}

	out, err := r.Render(doc)
	require.NoError(t, err)
	tags, err := ogtags.Extract([]byte(out))
	require.NoError(t, err)
	require.Equal(t, "Preview Lab", tags.Value("og:site_name"))
	require.Contains(t, out, `href="/app"`)
	require.Contains(t, out, "HUMAN REQUEST")
}

func TestRenderer_EscapesAttackerControlledValues(t *testing.T) {
	t.Parallel()

	r, err := New(Config{})
	require.NoError(t, err)
	payload := `<script>alert(1)</script>`
	doc := preview.Document{
		Metadata: preview.Metadata{
			Title:       payload + " Landing Page",
			Description: `Exclusive landing page for "><img src=x onerror=alert(1)> - ID: ` + payload,
			Image:       "https://picsum.photos/1200/630?random=1",
		},
		CurrentURL:     `http://localhost/landing-` + payload + `/u/1`,
		Username:       `"><img src=x onerror=alert(1)>`,
		ID:             payload,
		Identification: payload,
	}

	out, err := r.Render(doc)
	require.NoError(t, err)
	require.NotContains(t, out, "<script")
	require.NotContains(t, out, "<img src=x")
	require.Contains(t, out, "&lt;script&gt;")

	tags, err := ogtags.Extract([]byte(out))
	require.NoError(t, err)
	require.Equal(t, doc.Metadata.Title, tags.Value("og:title"))
	require.Equal(t, doc.Metadata.Description, tags.Value("og:description"))
	require.Equal(t, doc.CurrentURL, tags.Value("og:url"))
}
