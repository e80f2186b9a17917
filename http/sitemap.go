package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/apigraph"
)

// maxSitemapDepth bounds sitemap-index recursion.
const maxSitemapDepth = 2

// docPathKeywords select sitemap URLs worth scanning. A sitemap lists
// the whole site; only documentation-looking paths become candidates.
var docPathKeywords = []string{
	"api",
	"docs",
	"documentation",
	"reference",
	"developer",
	"endpoint",
}

// Ensure Sitemap implements apigraph.Sitemap.
var _ apigraph.Sitemap = (*Sitemap)(nil)

// Sitemap discovers documentation URLs from a site's sitemap.xml.
type Sitemap struct {
	client *http.Client
}

// NewSitemap creates a Sitemap using the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemap(client *http.Client) *Sitemap {
	if client == nil {
		client = http.DefaultClient
	}
	return &Sitemap{client: client}
}

// DiscoverURLs fetches {origin}/sitemap.xml, resolves sitemap indexes,
// and returns same-host URLs whose path looks documentation-related.
// A missing sitemap is not an error; it returns an empty slice.
func (s *Sitemap) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, apigraph.Errorf(apigraph.EINVALID, "invalid base URL: %v", err)
	}

	sitemapURL := base.Scheme + "://" + base.Host + "/sitemap.xml"
	entries, err := s.collect(ctx, sitemapURL, maxSitemapDepth)
	if err != nil {
		return []string{}, nil // no sitemap, not a failure
	}

	seen := make(map[string]struct{})
	var urls []string
	for _, entry := range entries {
		u, err := url.Parse(entry)
		if err != nil || u.Host != base.Host {
			continue
		}
		if !looksLikeDocPath(u.Path) {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		urls = append(urls, entry)
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

// collect fetches one sitemap document and returns its page URLs,
// following nested sitemap indexes up to depth levels.
func (s *Sitemap) collect(ctx context.Context, sitemapURL string, depth int) ([]string, error) {
	if depth <= 0 {
		return nil, nil
	}

	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", sitemapURL, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap %s", sitemapURL)
	}

	var urls []string
	switch root.Tag {
	case "sitemapindex":
		for _, sm := range root.SelectElements("sitemap") {
			loc := sm.SelectElement("loc")
			if loc == nil {
				continue
			}
			nested, err := s.collect(ctx, strings.TrimSpace(loc.Text()), depth-1)
			if err != nil {
				continue
			}
			urls = append(urls, nested...)
		}
	case "urlset":
		for _, u := range root.SelectElements("url") {
			loc := u.SelectElement("loc")
			if loc == nil {
				continue
			}
			urls = append(urls, strings.TrimSpace(loc.Text()))
		}
	}
	return urls, nil
}

func (s *Sitemap) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}
	return io.ReadAll(resp.Body)
}

func looksLikeDocPath(path string) bool {
	lower := strings.ToLower(path)
	for _, kw := range docPathKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
