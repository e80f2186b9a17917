package apigraph

// LinkExtractor pulls candidate documentation links out of a page's
// anchor elements.
type LinkExtractor interface {
	// EndpointLinks returns links whose text or resolved URL looks like
	// API documentation. Results are absolute URLs, deduplicated by exact
	// string, in document order.
	EndpointLinks(html string, baseURL string) ([]string, error)

	// SubsectionLinks returns same-origin content links used as a
	// fallback "go one level deeper" source when EndpointLinks finds
	// nothing. Obvious non-content links (login, signup, contact) are
	// excluded.
	SubsectionLinks(html string, baseURL string) ([]string, error)
}

// StructureClassifier corroborates text-based multiplicity detection
// using page structure (headings, tables, code blocks).
type StructureClassifier interface {
	// DetectMultipleEndpoints reports whether the page's element
	// structure suggests it documents more than one endpoint.
	DetectMultipleEndpoints(html string) bool
}
