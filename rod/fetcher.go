// Package rod provides a browser-based implementation of apigraph.Fetcher
// using Chrome automation, for documentation sites that render content
// with JavaScript. Browser contexts are expensive; pair this fetcher
// with a small pipeline batch size.
package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/apigraph"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 30 * time.Second

// DefaultPagePoolSize bounds concurrent browser pages. This is the hard
// ceiling on browser contexts regardless of pipeline batch size.
const DefaultPagePoolSize = 2

// Ensure Fetcher implements apigraph.Fetcher at compile time.
var _ apigraph.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using a headless Chrome browser.
// Pages are drawn from a fixed-size pool, so it is safe for concurrent
// use while bounding browser resource consumption.
type Fetcher struct {
	browser *rod.Browser
	pool    rod.Pool[rod.Page]
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-fetch render timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher launches a headless Chrome browser with a page pool of the
// given size. Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(poolSize int, opts ...Option) (*Fetcher, error) {
	if poolSize <= 0 {
		poolSize = DefaultPagePoolSize
	}

	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill() // clean up launched process on connection failure
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	f := &Fetcher{
		browser: browser,
		pool:    rod.NewPagePool(poolSize),
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch navigates to the URL, waits for the page to render, and returns
// the HTML. The fetch is bounded by the configured timeout in addition
// to whatever deadline the context carries.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := f.pool.Get(func() (*rod.Page, error) {
		return f.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return "", err
	}
	defer f.pool.Put(page)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for %s to load: %w", url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}
	return html, nil
}

// Close releases pooled pages and the browser.
func (f *Fetcher) Close() error {
	f.pool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	return f.browser.Close()
}
