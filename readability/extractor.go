// Package readability implements boilerplate removal using
// go-readability. It is an alternative to the trafilatura extractor for
// documentation sites whose markup defeats trafilatura's heuristics,
// selected with the CLI's --extractor flag.
//
// Readability favors long article-like text runs, which suits prose-heavy
// reference pages but can discard sparse pages built from short snippets.
// When nothing readable survives, Extract reports EUNPROCESSABLE and the
// caller falls back to the raw page.
package readability

import (
	"strings"

	"github.com/fwojciec/apigraph"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements apigraph.Extractor at compile time.
var _ apigraph.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content and title.
// Pages where readability finds no text at all are EUNPROCESSABLE,
// distinct from the EINVALID of empty input.
func (e *Extractor) Extract(rawHTML string) (*apigraph.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, apigraph.Errorf(apigraph.EINVALID, "empty HTML input")
	}

	// A parse failure and a parse that finds no text both mean the same
	// thing here: this extractor cannot digest the page.
	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		return nil, apigraph.Errorf(apigraph.EUNPROCESSABLE, "no readable content in page")
	}

	res := &apigraph.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}
	return res, nil
}
