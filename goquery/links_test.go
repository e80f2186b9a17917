package goquery_test

import (
	"testing"

	"github.com/fwojciec/apigraph"
	"github.com/fwojciec/apigraph/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkExtractor_EndpointLinks(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<a href="/docs/users">API Reference</a>
		<a href="/docs/orders">API Endpoint</a>
		<a href="/about">About Us</a>
		<a href="/blog">Blog</a>
	</body></html>`

	e := goquery.NewLinkExtractor()
	urls, err := e.EndpointLinks(html, "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/docs/users",
		"https://example.com/docs/orders",
	}, urls)
}

func TestLinkExtractor_EndpointLinks_MatchesURLKeywords(t *testing.T) {
	t.Parallel()

	// The link text says nothing, but the URL path does.
	html := `<a href="/api/v1/reference">Read more</a>`

	e := goquery.NewLinkExtractor()
	urls, err := e.EndpointLinks(html, "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/api/v1/reference"}, urls)
}

func TestLinkExtractor_EndpointLinks_Deduplicates(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="/docs/users">API docs</a>
		<a href="/docs/users">Same API docs again</a>
		<a href="/docs/users#section">API docs with fragment</a>
	</body>`

	e := goquery.NewLinkExtractor()
	urls, err := e.EndpointLinks(html, "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/docs/users"}, urls)
}

func TestLinkExtractor_EndpointLinks_SkipsNonContentHrefs(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="#api-section">API section anchor</a>
		<a href="javascript:void(0)">API popup</a>
		<a href="mailto:api@example.com">API support</a>
		<a href="tel:+1234567890">API hotline</a>
		<a href="/docs/api">Real API docs</a>
	</body>`

	e := goquery.NewLinkExtractor()
	urls, err := e.EndpointLinks(html, "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/docs/api"}, urls)
}

func TestLinkExtractor_EndpointLinks_SkipsSelfReference(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="/docs">API home</a>
		<a href="/docs/users">API users</a>
	</body>`

	e := goquery.NewLinkExtractor()
	urls, err := e.EndpointLinks(html, "https://example.com/docs")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/docs/users"}, urls)
}

func TestLinkExtractor_EndpointLinks_AbsoluteAndExternal(t *testing.T) {
	t.Parallel()

	// Endpoint links may leave the origin; documentation often lives on a
	// dedicated subdomain.
	html := `<a href="https://developers.example.com/reference">API Reference</a>`

	e := goquery.NewLinkExtractor()
	urls, err := e.EndpointLinks(html, "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://developers.example.com/reference"}, urls)
}

func TestLinkExtractor_EndpointLinks_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	e := goquery.NewLinkExtractor()
	_, err := e.EndpointLinks("<a href='/docs'>API</a>", "://not-a-url")

	require.Error(t, err)
	assert.Equal(t, apigraph.EINVALID, apigraph.ErrorCode(err))
}

func TestLinkExtractor_SubsectionLinks(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="/guides/start">Getting Started</a>
		<a href="/guides/advanced">Advanced Topics</a>
		<a href="https://other.example.org/page">External</a>
		<a href="/login">Login</a>
		<a href="/pricing">Pricing</a>
		<a href="/contact">Contact</a>
	</body>`

	e := goquery.NewLinkExtractor()
	urls, err := e.SubsectionLinks(html, "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/guides/start",
		"https://example.com/guides/advanced",
	}, urls)
}

func TestLinkExtractor_SubsectionLinks_SubdomainIsDifferentHost(t *testing.T) {
	t.Parallel()

	html := `<a href="https://sub.example.com/guides">Guides</a>`

	e := goquery.NewLinkExtractor()
	urls, err := e.SubsectionLinks(html, "https://example.com")

	require.NoError(t, err)
	assert.Empty(t, urls)
}
