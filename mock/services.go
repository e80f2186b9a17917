package mock

import (
	"context"

	"github.com/fwojciec/apigraph"
)

var _ apigraph.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of apigraph.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*apigraph.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*apigraph.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ apigraph.Converter = (*Converter)(nil)

// Converter is a mock implementation of apigraph.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ apigraph.Sitemap = (*Sitemap)(nil)

// Sitemap is a mock implementation of apigraph.Sitemap.
type Sitemap struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string) ([]string, error)
}

func (s *Sitemap) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL)
}

var _ apigraph.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of apigraph.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.WaitFn(ctx, domain)
}

var _ apigraph.TaskStore = (*TaskStore)(nil)

// TaskStore is a mock implementation of apigraph.TaskStore.
type TaskStore struct {
	CreateFn       func(ctx context.Context, rootURL string) (*apigraph.Task, error)
	GetFn          func(ctx context.Context, id string) (*apigraph.Task, error)
	AppendUpdateFn func(ctx context.Context, id string, event apigraph.ProgressEvent) error
	CompleteFn     func(ctx context.Context, id string, report *apigraph.Report) error
}

func (s *TaskStore) Create(ctx context.Context, rootURL string) (*apigraph.Task, error) {
	return s.CreateFn(ctx, rootURL)
}

func (s *TaskStore) Get(ctx context.Context, id string) (*apigraph.Task, error) {
	return s.GetFn(ctx, id)
}

func (s *TaskStore) AppendUpdate(ctx context.Context, id string, event apigraph.ProgressEvent) error {
	return s.AppendUpdateFn(ctx, id, event)
}

func (s *TaskStore) Complete(ctx context.Context, id string, report *apigraph.Report) error {
	return s.CompleteFn(ctx, id, report)
}
