package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepLinkPrefersShareLink(t *testing.T) {
	dest, ok := DeepLink("https://denver.overdrive.com/search?query=dune", "https://share.libbyapp.com/x")
	assert.True(t, ok)
	assert.Equal(t, "https://share.libbyapp.com/x", dest)
}

func TestDeepLinkFallsBackToSearchQuery(t *testing.T) {
	dest, ok := DeepLink("https://lib.overdrive.com/search?query=dune", "")
	assert.True(t, ok)
	assert.Equal(t, "https://libbyapp.com/search/query-dune", dest)
}

func TestDeepLinkEncodesQuery(t *testing.T) {
	dest, ok := DeepLink("https://lib.overdrive.com/search?query=dune+messiah", "")
	assert.True(t, ok)
	assert.Equal(t, "https://libbyapp.com/search/query-dune%20messiah", dest)
}

func TestDeepLinkMissingQueryParam(t *testing.T) {
	dest, ok := DeepLink("https://lib.overdrive.com/search", "")
	assert.True(t, ok)
	assert.Equal(t, "https://libbyapp.com/search/query-", dest)
}

func TestDeepLinkNoInputs(t *testing.T) {
	dest, ok := DeepLink("", "")
	assert.False(t, ok)
	assert.Empty(t, dest)

	dest, ok = DeepLink("   ", "  ")
	assert.False(t, ok)
	assert.Empty(t, dest)
}

func TestDeepLinkMalformedSearchURL(t *testing.T) {
	// A bad search URL means no destination, never a panic.
	dest, ok := DeepLink("://not-a-url", "")
	assert.False(t, ok)
	assert.Empty(t, dest)
}
