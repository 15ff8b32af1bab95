package ogtags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	body := []byte(`<!DOCTYPE html><html><head>
<title> Hello </title>
<meta property="og:title" content="First">
<meta property="og:title" content="Second">
<meta property="og:image" content="https://img.example/a.png?w=1&amp;h=2">
<meta name="twitter:card" content="summary_large_image">
<meta charset="UTF-8">
<meta name="empty">
</head><body></body></html>`)

	tags, err := Extract(body)
	require.NoError(t, err)
	require.Equal(t, "Hello", tags.Title)
	require.Equal(t, "First", tags.Value("og:title"))
	require.Equal(t, "https://img.example/a.png?w=1&h=2", tags.Value("og:image"))
	require.Equal(t, "summary_large_image", tags.Value("twitter:card"))
	require.NotContains(t, tags.Meta, "empty")
	require.Equal(t, []string{"og:url"}, tags.Missing("og:title", "og:url"))
}

func TestExtract_NoMeta(t *testing.T) {
	t.Parallel()

	tags, err := Extract([]byte("not really html"))
	require.NoError(t, err)
	require.Empty(t, tags.Meta)
	require.Len(t, tags.Missing(CardKeys...), len(CardKeys))
}
