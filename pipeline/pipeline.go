// Package pipeline orchestrates the scan of a documentation site: link
// discovery from a root URL, per-page classification and model
// extraction in bounded-concurrency batches, and prerequisite linking
// over the combined result.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/apigraph"
	"github.com/fwojciec/apigraph/bloom"
	"github.com/fwojciec/apigraph/extract"
	"github.com/fwojciec/apigraph/link"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Defaults. The batch size bounds concurrent outbound requests; use
// DefaultBrowserBatchSize with a browser-backed fetcher, where each
// concurrent unit costs a browser context.
const (
	DefaultBatchSize        = 5
	DefaultBrowserBatchSize = 2
	DefaultSubsectionLimit  = 5
)

// Bloom sizing for the per-scan URL seen-set.
const (
	seenSetExpectedURLs      = 10000
	seenSetFalsePositiveRate = 0.01
)

// Progress percent boundaries per stage.
const (
	percentScrapeDone     = 20.0
	percentProcessingDone = 90.0
)

// Pipeline drives the scan. Fetcher, Links, Completer, and Linker are
// required; everything else is optional and enabled when set.
type Pipeline struct {
	Fetcher   apigraph.Fetcher
	Links     apigraph.LinkExtractor
	Completer apigraph.Completer
	Linker    *link.Linker

	Extractor apigraph.Extractor           // boilerplate removal before prompting
	Converter apigraph.Converter           // clean HTML to markdown
	Structure apigraph.StructureClassifier // HTML corroboration of multiplicity
	Sitemap   apigraph.Sitemap             // supplemental endpoint discovery
	Limiter   apigraph.DomainLimiter
	Logger    *slog.Logger

	BatchSize       int
	SubsectionLimit int
	RetryDelays     []time.Duration
}

// pageOutcome is the per-URL unit of work result.
type pageOutcome struct {
	position int
	result   apigraph.PageResult
}

// ProcessRoot scans the documentation site rooted at rootURL and returns
// the report. It returns a Go error only for a malformed root URL or a
// root fetch transport failure; "nothing found" is reported through
// Report.Err with SuccessCount zero.
func (p *Pipeline) ProcessRoot(ctx context.Context, rootURL string, progress ProgressFunc) (*apigraph.Report, error) {
	root, err := url.Parse(rootURL)
	if err != nil || !root.IsAbs() || (root.Scheme != "http" && root.Scheme != "https") {
		return nil, apigraph.Errorf(apigraph.EINVALID, "root URL must be an absolute http(s) URL: %q", rootURL)
	}

	em := newEmitter(progress)
	defer em.close()

	em.emit(apigraph.ProgressEvent{Stage: apigraph.StageScrapeStarted, URL: rootURL, Percent: 0})

	endpoints, err := p.discoverEndpoints(ctx, rootURL)
	if err != nil {
		em.emit(apigraph.ProgressEvent{Stage: apigraph.StageError, URL: rootURL, Err: err.Error(), Percent: 0})
		return nil, err
	}

	em.emit(apigraph.ProgressEvent{
		Stage:   apigraph.StageScrapeComplete,
		URL:     rootURL,
		Total:   len(endpoints),
		Percent: percentScrapeDone,
	})

	report := &apigraph.Report{
		RootURL:      rootURL,
		EndpointURLs: endpoints,
		Results:      []apigraph.PageResult{},
		TotalScanned: len(endpoints),
	}

	if len(endpoints) == 0 {
		report.Err = fmt.Sprintf("no API documentation links found at %s", rootURL)
		em.emit(apigraph.ProgressEvent{Stage: apigraph.StageProcessingComplete, Percent: 100})
		return report, nil
	}

	em.emit(apigraph.ProgressEvent{
		Stage:   apigraph.StageProcessingStarted,
		Total:   len(endpoints),
		Percent: percentScrapeDone,
	})

	report.Results = p.processEndpoints(ctx, endpoints, em)

	em.emit(apigraph.ProgressEvent{
		Stage:     apigraph.StageProcessingComplete,
		Completed: len(endpoints),
		Total:     len(endpoints),
		Percent:   percentProcessingDone,
	})

	em.emit(apigraph.ProgressEvent{Stage: apigraph.StageLinkingStarted, Percent: percentProcessingDone})
	p.linkResults(ctx, report.Results)
	em.emit(apigraph.ProgressEvent{Stage: apigraph.StageLinkingComplete, Percent: 100})

	for _, r := range report.Results {
		switch r.Status {
		case apigraph.StatusSuccess:
			report.SuccessCount++
		case apigraph.StatusError:
			report.ErrorCount++
		case apigraph.StatusSkipped:
			report.SkippedCount++
		}
	}
	if report.SuccessCount == 0 {
		report.Err = fmt.Sprintf("no API operations could be extracted from %s", rootURL)
	}

	return report, nil
}

// discoverEndpoints fetches the root page and collects candidate
// endpoint URLs: anchor links first, sitemap URLs as a supplement, and a
// single subsection hop only when the direct pass finds nothing.
func (p *Pipeline) discoverEndpoints(ctx context.Context, rootURL string) ([]string, error) {
	html, err := p.fetch(ctx, rootURL)
	if err != nil {
		return nil, apigraph.Errorf(apigraph.EUNAVAILABLE, "fetching root %s: %v", rootURL, err)
	}

	seen := bloom.NewSeenSet(seenSetExpectedURLs, seenSetFalsePositiveRate)
	seen.MarkSeen(rootURL)

	links, err := p.Links.EndpointLinks(html, rootURL)
	if err != nil {
		return nil, err
	}

	var endpoints []string
	for _, u := range links {
		if seen.MarkSeen(u) {
			endpoints = append(endpoints, u)
		}
	}

	if p.Sitemap != nil {
		sitemapURLs, err := p.Sitemap.DiscoverURLs(ctx, rootURL)
		if err != nil {
			p.log().Debug("sitemap discovery failed", "url", rootURL, "err", err)
		}
		for _, u := range sitemapURLs {
			if seen.MarkSeen(u) {
				endpoints = append(endpoints, u)
			}
		}
	}

	if len(endpoints) > 0 {
		return endpoints, nil
	}

	// One level deeper: scrape a bounded number of subsection pages and
	// take their endpoint links. This is the only recursion.
	subsections, err := p.Links.SubsectionLinks(html, rootURL)
	if err != nil {
		return nil, err
	}
	limit := p.SubsectionLimit
	if limit <= 0 {
		limit = DefaultSubsectionLimit
	}
	if len(subsections) > limit {
		subsections = subsections[:limit]
	}

	nested := make([][]string, len(subsections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.batchSize())
	for i, sub := range subsections {
		g.Go(func() error {
			subHTML, err := p.fetch(gctx, sub)
			if err != nil {
				p.log().Debug("subsection fetch failed", "url", sub, "err", err)
				return nil
			}
			found, err := p.Links.EndpointLinks(subHTML, sub)
			if err != nil {
				return nil
			}
			nested[i] = found
			return nil
		})
	}
	_ = g.Wait()

	for _, found := range nested {
		for _, u := range found {
			if seen.MarkSeen(u) {
				endpoints = append(endpoints, u)
			}
		}
	}
	return endpoints, nil
}

// processEndpoints runs classification and extraction over the endpoint
// URLs in fixed-size batches. Batch N+1 does not start until batch N
// fully resolves, and results are collected in submission order.
func (p *Pipeline) processEndpoints(ctx context.Context, endpoints []string, em *emitter) []apigraph.PageResult {
	results := make([]apigraph.PageResult, len(endpoints))
	batchSize := p.batchSize()
	var completed atomic.Int64

	contentHashes := &contentSet{hashes: make(map[uint64]struct{})}

	for start := 0; start < len(endpoints); start += batchSize {
		end := min(start+batchSize, len(endpoints))

		em.emit(apigraph.ProgressEvent{
			Stage:     apigraph.StageBatch,
			Completed: start,
			Total:     len(endpoints),
			Percent:   p.processingPercent(start, len(endpoints)),
		})

		outcomes := make(chan pageOutcome, end-start)
		var wg sync.WaitGroup
		for i, u := range endpoints[start:end] {
			wg.Add(1)
			go func() {
				defer wg.Done()
				outcomes <- pageOutcome{
					position: start + i,
					result:   p.processURL(ctx, u, contentHashes),
				}
			}()
		}
		wg.Wait()
		close(outcomes)

		for o := range outcomes {
			results[o.position] = o.result
			done := completed.Add(1)
			em.emit(apigraph.ProgressEvent{
				Stage:     apigraph.StageURL,
				URL:       o.result.URL,
				Completed: int(done),
				Total:     len(endpoints),
				Percent:   p.processingPercent(int(done), len(endpoints)),
				Err:       o.result.Err,
			})
		}
	}

	return results
}

// processURL is the unit of failure isolation: every fetch, model, or
// parse error for one URL becomes an error-status result and never
// aborts its siblings.
func (p *Pipeline) processURL(ctx context.Context, pageURL string, seen *contentSet) apigraph.PageResult {
	html, err := p.fetch(ctx, pageURL)
	if err != nil {
		return apigraph.PageResult{URL: pageURL, Status: apigraph.StatusError, Err: fmt.Sprintf("fetch: %v", err)}
	}

	text := p.pageText(html)

	if !seen.markNew(text) {
		return apigraph.PageResult{URL: pageURL, Status: apigraph.StatusSkipped, Reason: "duplicate page content"}
	}

	// Cheap gate before any model call.
	if !apigraph.IsAPIDocumentation(text) {
		return apigraph.PageResult{URL: pageURL, Status: apigraph.StatusSkipped, Reason: "not API documentation"}
	}

	// Per-URL prompt gating: this page's own verdict picks the variant.
	multiple := apigraph.DetectMultipleEndpoints(text)
	if !multiple && p.Structure != nil {
		multiple = p.Structure.DetectMultipleEndpoints(html)
	}

	completion, err := p.Completer.Complete(ctx, extract.BuildExtractionPrompt(text, multiple))
	if err != nil {
		return apigraph.PageResult{URL: pageURL, Status: apigraph.StatusError, Err: fmt.Sprintf("model: %v", err)}
	}

	actions, err := extract.Parse(completion)
	if err != nil {
		return apigraph.PageResult{URL: pageURL, Status: apigraph.StatusError, Err: fmt.Sprintf("parse: %v", err)}
	}
	if len(actions) == 0 {
		return apigraph.PageResult{URL: pageURL, Status: apigraph.StatusError, Err: "no valid actions extracted"}
	}

	return apigraph.PageResult{
		URL:          pageURL,
		Status:       apigraph.StatusSuccess,
		Actions:      actions,
		MultipleAPIs: multiple,
	}
}

// linkResults runs prerequisite linking across every successful result
// and re-attaches the linked actions to their results by id lookup. Ids
// are reconciled across results first; the linker requires uniqueness
// within the collection it is handed.
func (p *Pipeline) linkResults(ctx context.Context, results []apigraph.PageResult) {
	var flat []*apigraph.Action
	seen := make(map[string]struct{})
	for _, r := range results {
		if r.Status != apigraph.StatusSuccess {
			continue
		}
		for _, a := range r.Actions {
			if _, dup := seen[a.ID]; dup {
				a.ID = uuid.NewString()
			}
			seen[a.ID] = struct{}{}
			flat = append(flat, a)
		}
	}
	if len(flat) < 2 {
		return
	}

	linked := p.Linker.Link(ctx, flat)
	byID := make(map[string]*apigraph.Action, len(linked))
	for _, a := range linked {
		byID[a.ID] = a
	}
	for _, r := range results {
		for i, a := range r.Actions {
			if replacement, ok := byID[a.ID]; ok {
				r.Actions[i] = replacement
			}
		}
	}
}

// fetch applies the per-domain limiter and retry policy around Fetcher.
func (p *Pipeline) fetch(ctx context.Context, pageURL string) (string, error) {
	if p.Limiter != nil {
		if u, err := url.Parse(pageURL); err == nil {
			if err := p.Limiter.Wait(ctx, u.Host); err != nil {
				return "", err
			}
		}
	}

	delays := p.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return fetchWithRetry(ctx, pageURL, p.Fetcher.Fetch, delays)
}

// pageText reduces raw page HTML to the text handed to classification
// and the model: boilerplate stripped, converted to markdown. Either
// step failing falls back to the fuller representation rather than
// losing the page.
func (p *Pipeline) pageText(html string) string {
	content := html
	if p.Extractor != nil {
		if extracted, err := p.Extractor.Extract(html); err == nil && extracted.ContentHTML != "" {
			content = extracted.ContentHTML
		}
	}
	if p.Converter != nil {
		if markdown, err := p.Converter.Convert(content); err == nil && markdown != "" {
			return markdown
		}
	}
	return content
}

func (p *Pipeline) batchSize() int {
	if p.BatchSize > 0 {
		return p.BatchSize
	}
	return DefaultBatchSize
}

// processingPercent maps URL completion onto the processing band of the
// overall percent scale.
func (p *Pipeline) processingPercent(completed, total int) float64 {
	if total == 0 {
		return percentProcessingDone
	}
	band := percentProcessingDone - percentScrapeDone
	return percentScrapeDone + band*float64(completed)/float64(total)
}

func (p *Pipeline) log() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// contentSet dedupes page content across a scan by xxhash. Two URLs
// serving identical text cost one model call.
type contentSet struct {
	mu     sync.Mutex
	hashes map[uint64]struct{}
}

// markNew records the content hash and reports whether it was new.
func (c *contentSet) markNew(text string) bool {
	h := xxhash.Sum64String(text)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.hashes[h]; dup {
		return false
	}
	c.hashes[h] = struct{}{}
	return true
}
