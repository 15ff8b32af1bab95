package detector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeuristic_Classify_KnownCrawlers(t *testing.T) {
	t.Parallel()

	h := NewHeuristic()
	for _, ua := range DefaultUserAgents {
		require.True(t, h.Classify(ua).IsAutomated, "user agent %q", ua)
	}
	require.True(t, h.Classify("Twitterbot/1.0").IsAutomated)
	require.True(t, h.Classify("TWITTERBOT").IsAutomated)
}

func TestHeuristic_Classify_Humans(t *testing.T) {
	t.Parallel()

	h := NewHeuristic()
	require.False(t, h.Classify("").IsAutomated)
	require.False(t, h.Classify("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36").IsAutomated)
	require.False(t, h.Classify("curl/8.4.0").IsAutomated)
}

func TestHeuristic_CustomSignatures(t *testing.T) {
	t.Parallel()

	h := NewHeuristic("  MyPreviewer ", "")
	require.Equal(t, []string{"mypreviewer"}, h.Signatures())
	require.True(t, h.Classify("mypreviewer/3").IsAutomated)
	require.False(t, h.Classify("Twitterbot/1.0").IsAutomated)
}

func TestDefaultUserAgentsAlignWithSignatures(t *testing.T) {
	t.Parallel()

	require.Len(t, DefaultUserAgents, len(DefaultSignatures))
	for i, sig := range DefaultSignatures {
		require.True(t, NewHeuristic(sig).Classify(DefaultUserAgents[i]).IsAutomated, sig)
	}
}
