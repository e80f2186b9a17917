package apigraph

import (
	"regexp"
	"strings"
)

// apiVocabulary is the fixed term set used by IsAPIDocumentation. Matching
// is presence-based (not frequency-based) with word boundaries, so prose
// that merely mentions one term repeatedly does not pass the gate.
var apiVocabulary = []string{
	"api",
	"endpoint",
	"authentication",
	"authorization",
	"request",
	"response",
	"parameter",
	"header",
	"token",
	"oauth",
	"webhook",
	"payload",
	"json",
	"curl",
	"status code",
	"rate limit",
	"query string",
	"get",
	"post",
	"put",
	"delete",
	"patch",
}

// minVocabularyHits is the number of distinct vocabulary terms a page
// must contain before it is treated as API documentation. False
// negatives are acceptable; this is a conservative gate that saves model
// calls, and false positives are caught by the parser's validation.
const minVocabularyHits = 3

var vocabularyRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(apiVocabulary))
	for i, term := range apiVocabulary {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
	}
	return res
}()

// IsAPIDocumentation reports whether text looks like API documentation.
// It is cheap, pure, and deterministic: true iff at least
// minVocabularyHits distinct vocabulary terms appear with word-boundary
// matching, case-insensitively.
func IsAPIDocumentation(text string) bool {
	hits := 0
	for _, re := range vocabularyRes {
		if re.MatchString(text) {
			hits++
			if hits >= minVocabularyHits {
				return true
			}
		}
	}
	return false
}

// MultiEndpointTrigger is a single multiplicity-detection heuristic.
// The triggers are empirically tuned, independently swappable policy
// functions combined with OR; any one firing is sufficient. Each trigger
// is monotonic under concatenation: once text fires it, appending more
// text cannot un-fire it.
type MultiEndpointTrigger func(text string) bool

// DefaultMultiEndpointTriggers returns the standard trigger set used by
// DetectMultipleEndpoints.
func DefaultMultiEndpointTriggers() []MultiEndpointTrigger {
	return []MultiEndpointTrigger{
		TriggerEndpointPatterns,
		TriggerSectionKeywords,
		TriggerRepeatedMethods,
		TriggerVersionedPaths,
		TriggerNumberedAPIHeadings,
	}
}

// DetectMultipleEndpoints reports whether text likely documents more
// than one distinct API endpoint. Detection is deliberately permissive:
// under-detecting forces the single-endpoint prompt onto multi-endpoint
// content and silently loses data, while over-detecting merely asks the
// model for an array it may answer with one element.
func DetectMultipleEndpoints(text string) bool {
	for _, trigger := range DefaultMultiEndpointTriggers() {
		if trigger(text) {
			return true
		}
	}
	return false
}

var endpointPatternRes = []*regexp.Regexp{
	regexp.MustCompile(`(?im)\b(?:GET|POST|PUT|DELETE|PATCH)\s+/[^\s"'<>]*`),
	regexp.MustCompile(`(?i)\bendpoint\s*:`),
	regexp.MustCompile(`(?i)\brequest\s+url\s*:`),
}

// TriggerEndpointPatterns fires when more than one "METHOD /path",
// "Endpoint:" or "Request URL:" pattern appears across the text.
func TriggerEndpointPatterns(text string) bool {
	total := 0
	for _, re := range endpointPatternRes {
		total += len(re.FindAllStringIndex(text, -1))
		if total > 1 {
			return true
		}
	}
	return false
}

var sectionKeywords = []string{
	"endpoints",
	"api reference",
	"api endpoints",
	"available apis",
	"api methods",
}

// TriggerSectionKeywords fires on any section keyword that usually
// titles a list of endpoints.
func TriggerSectionKeywords(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range sectionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var httpMethodRes = map[string]*regexp.Regexp{
	"GET":    regexp.MustCompile(`\bGET\b`),
	"POST":   regexp.MustCompile(`\bPOST\b`),
	"PUT":    regexp.MustCompile(`\bPUT\b`),
	"DELETE": regexp.MustCompile(`\bDELETE\b`),
	"PATCH":  regexp.MustCompile(`\bPATCH\b`),
}

// TriggerRepeatedMethods fires when at least two distinct HTTP methods
// each appear more than once, a strong sign of multiple documented calls.
func TriggerRepeatedMethods(text string) bool {
	repeated := 0
	for _, re := range httpMethodRes {
		if len(re.FindAllStringIndex(text, -1)) > 1 {
			repeated++
			if repeated >= 2 {
				return true
			}
		}
	}
	return false
}

var (
	urlTokenRe          = regexp.MustCompile(`https?://[^\s"'<>)]+|(?:/[A-Za-z0-9._{}-]+){2,}`)
	versionedSegmentsRe = regexp.MustCompile(`(?i)/(?:api|v1|v2|rest)/`)
)

// TriggerVersionedPaths fires when more than one distinct URL or path
// contains a versioned API segment (/api/, /v1/, /v2/, /rest/).
func TriggerVersionedPaths(text string) bool {
	distinct := make(map[string]struct{})
	for _, tok := range urlTokenRe.FindAllString(text, -1) {
		if versionedSegmentsRe.MatchString(tok) {
			distinct[tok] = struct{}{}
			if len(distinct) > 1 {
				return true
			}
		}
	}
	return false
}

var numberedAPIHeadingRe = regexp.MustCompile(`(?m)^\s*\d+\.\s+[A-Za-z][A-Za-z0-9]*Api\b`)

// TriggerNumberedAPIHeadings fires on at least one numbered "N. XApi"
// heading, a layout some generators use for endpoint catalogs.
func TriggerNumberedAPIHeadings(text string) bool {
	return numberedAPIHeadingRe.MatchString(text)
}
