// Package goquery provides HTML-structure implementations of link
// extraction and endpoint-multiplicity detection using CSS queries.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/apigraph"
)

// docKeywords mark a link as pointing at API documentation when they
// appear in the link text or the resolved URL.
var docKeywords = []string{
	"api",
	"endpoint",
	"reference",
	"documentation",
	"docs",
	"developer",
	"rest",
	"graphql",
	"integration",
}

// nonContentKeywords exclude obvious non-content links from subsection
// discovery.
var nonContentKeywords = []string{
	"login",
	"signin",
	"sign-in",
	"signup",
	"sign-up",
	"register",
	"contact",
	"pricing",
	"careers",
	"privacy",
	"terms",
}

// Ensure LinkExtractor implements apigraph.LinkExtractor.
var _ apigraph.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor pulls candidate documentation links out of anchor
// elements using keyword heuristics.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// EndpointLinks returns absolute URLs of anchors whose text or resolved
// URL looks like API documentation. Results are deduplicated by exact
// URL string and keep document order.
func (e *LinkExtractor) EndpointLinks(html string, baseURL string) ([]string, error) {
	return extractAnchors(html, baseURL, func(base *url.URL, resolved, text string) bool {
		haystack := strings.ToLower(text) + " " + strings.ToLower(resolved)
		for _, kw := range docKeywords {
			if strings.Contains(haystack, kw) {
				return true
			}
		}
		return false
	})
}

// SubsectionLinks returns same-origin content links, excluding obvious
// non-content destinations. It is the fallback "one level deeper" source
// used only when EndpointLinks finds nothing.
func (e *LinkExtractor) SubsectionLinks(html string, baseURL string) ([]string, error) {
	return extractAnchors(html, baseURL, func(base *url.URL, resolved, text string) bool {
		if !isSameHost(base, resolved) {
			return false
		}
		haystack := strings.ToLower(text) + " " + strings.ToLower(resolved)
		for _, kw := range nonContentKeywords {
			if strings.Contains(haystack, kw) {
				return false
			}
		}
		return true
	})
}

// extractAnchors walks every anchor with a usable href, resolves it
// against the base URL, and keeps those the include function accepts.
func extractAnchors(html, baseURL string, include func(base *url.URL, resolved, text string) bool) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, apigraph.Errorf(apigraph.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, apigraph.Errorf(apigraph.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]struct{})
	var urls []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}
		if isNonContentHref(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}

		if !include(base, resolved, sel.Text()) {
			return
		}

		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		urls = append(urls, resolved)
	})

	return urls, nil
}

// resolveURL resolves a relative href against a base URL.
// Returns empty string if the href cannot be parsed or if the resolved
// URL is self-referential (same as base URL after stripping fragment).
// Fragments are stripped from the resolved URL for deduplication.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isSameHost checks if the resolved URL has the same host as the base
// URL. Exact host matching - subdomains are considered different hosts.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

// isNonContentHref reports whether an href can never lead to a
// documentation page: fragments, javascript:, mailto:, tel:, data:.
func isNonContentHref(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
