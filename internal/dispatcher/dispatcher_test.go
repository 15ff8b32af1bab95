package dispatcher

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/landing-preview/internal/detector"
	"github.com/JakeFAU/landing-preview/internal/metadata"
	"github.com/JakeFAU/landing-preview/internal/ogtags"
	"github.com/JakeFAU/landing-preview/internal/preview"
	"github.com/JakeFAU/landing-preview/internal/registry"
	"github.com/JakeFAU/landing-preview/internal/render"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	renderer, err := render.New(render.Config{})
	require.NoError(t, err)
	return New(detector.NewHeuristic(), metadata.NewResolver(registry.Default()), renderer, "/")
}

func TestDispatch_CrawlerGetsDocument(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	req := Request{
		Identifier:     preview.Identifier{Slug: "quickprofits", Username: "novelnet", ID: "123456"},
		Identification: "facebookexternalhit/1.1",
		CurrentURL:     "http://example.com/landing-quickprofits/novelnet/123456",
	}

	out, err := d.Dispatch(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, out.Status)
	require.True(t, out.Classification.IsAutomated)
	require.Empty(t, out.Location)

	tags, err := ogtags.Extract([]byte(out.Body))
	require.NoError(t, err)
	require.Equal(t, registry.Default().ImageAt(0), tags.Value("og:image"))
	require.Equal(t, req.CurrentURL, tags.Value("og:url"))
	require.Equal(t, out.Metadata.Image, tags.Value("og:image"))
}

func TestDispatch_HumanGetsRedirect(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	for _, ua := range []string{"Mozilla/5.0", ""} {
		out, err := d.Dispatch(Request{
			Identifier:     preview.Identifier{Slug: "quickprofits", Username: "novelnet", ID: "123456"},
			Identification: ua,
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusFound, out.Status)
		require.Equal(t, "/?preview=landing-quickprofits/novelnet/123456", out.Location)
		require.Empty(t, out.Body)
	}
}

func TestDispatch_IsIdempotent(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	req := Request{
		Identifier:     preview.Identifier{Slug: "moneymaker", Username: "cashking", ID: "42"},
		Identification: "Twitterbot/1.0",
		CurrentURL:     "http://example.com/landing-moneymaker/cashking/42",
	}
	first, err := d.Dispatch(req)
	require.NoError(t, err)
	second, err := d.Dispatch(req)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestRedirectLocation_EscapesSegments(t *testing.T) {
	t.Parallel()

	d := New(nil, nil, nil, "/app")
	loc := d.RedirectLocation(preview.Identifier{Slug: "a&b", Username: "c d", ID: "<1>"})
	require.Equal(t, "/app?preview=landing-a%26b/c+d/%3C1%3E", loc)
}

func TestDispatch_RenderError(t *testing.T) {
	t.Parallel()

	d := New(detector.NewHeuristic(), metadata.NewResolver(registry.Default()), failingRenderer{}, "")
	_, err := d.Dispatch(Request{Identification: "Twitterbot"})
	require.Error(t, err)
}

type failingRenderer struct{}

func (failingRenderer) Render(preview.Document) (string, error) {
	return "", errors.New("boom")
}
