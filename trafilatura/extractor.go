// Package trafilatura implements boilerplate removal using go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/apigraph"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements apigraph.Extractor at compile time.
var _ apigraph.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
// Navigation, footers, sidebars, and ads are stripped; the endpoint
// documentation itself keeps its structure for markdown conversion.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content and title.
func (e *Extractor) Extract(rawHTML string) (*apigraph.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, apigraph.Errorf(apigraph.EINVALID, "empty HTML input")
	}

	// Fallback extraction keeps request/response samples and parameter
	// tables on pages where the main algorithm finds too little text.
	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	res := &apigraph.ExtractResult{Title: result.Metadata.Title}
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		res.ContentHTML = buf.String()
	}
	return res, nil
}
