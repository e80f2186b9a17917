package mock

import "github.com/fwojciec/apigraph"

var _ apigraph.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of apigraph.LinkExtractor.
type LinkExtractor struct {
	EndpointLinksFn   func(html string, baseURL string) ([]string, error)
	SubsectionLinksFn func(html string, baseURL string) ([]string, error)
}

func (e *LinkExtractor) EndpointLinks(html string, baseURL string) ([]string, error) {
	return e.EndpointLinksFn(html, baseURL)
}

func (e *LinkExtractor) SubsectionLinks(html string, baseURL string) ([]string, error) {
	return e.SubsectionLinksFn(html, baseURL)
}

var _ apigraph.StructureClassifier = (*StructureClassifier)(nil)

// StructureClassifier is a mock implementation of apigraph.StructureClassifier.
type StructureClassifier struct {
	DetectMultipleEndpointsFn func(html string) bool
}

func (c *StructureClassifier) DetectMultipleEndpoints(html string) bool {
	return c.DetectMultipleEndpointsFn(html)
}
