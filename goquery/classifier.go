package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/apigraph"
)

// apiishRe matches id/class/heading text that suggests API content.
var apiishRe = regexp.MustCompile(`(?i)\b(?:api|endpoint|method|request|resource)s?\b`)

// Ensure StructureClassifier implements apigraph.StructureClassifier.
var _ apigraph.StructureClassifier = (*StructureClassifier)(nil)

// StructureClassifier corroborates text-based multiplicity detection
// using the page's element structure. Each check is independent; any one
// firing is sufficient.
type StructureClassifier struct{}

// NewStructureClassifier creates a new StructureClassifier.
func NewStructureClassifier() *StructureClassifier {
	return &StructureClassifier{}
}

// DetectMultipleEndpoints reports whether the page structure suggests
// more than one documented endpoint: multiple API-ish headings, multiple
// API-ish tables, multiple API-ish containers, or more than two code
// blocks.
func (c *StructureClassifier) DetectMultipleEndpoints(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	return countMatchingText(doc, "h1, h2, h3, h4, h5, h6") > 1 ||
		countMatchingText(doc, "table") > 1 ||
		countAPIishContainers(doc) > 1 ||
		doc.Find("pre, code").Length() > 2
}

// countMatchingText counts elements whose text content looks API-ish.
func countMatchingText(doc *goquery.Document, selector string) int {
	count := 0
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if apiishRe.MatchString(sel.Text()) {
			count++
		}
	})
	return count
}

// countAPIishContainers counts container elements whose id or class
// attribute looks API-ish.
func countAPIishContainers(doc *goquery.Document) int {
	count := 0
	doc.Find("div, section, article").Each(func(_ int, sel *goquery.Selection) {
		id, _ := sel.Attr("id")
		class, _ := sel.Attr("class")
		if apiishRe.MatchString(id) || apiishRe.MatchString(class) {
			count++
		}
	})
	return count
}
