package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/fwojciec/apigraph"
	"github.com/fwojciec/apigraph/extract"
	"github.com/google/uuid"
)

// AugmentResult is the outcome of manual prerequisite augmentation.
type AugmentResult struct {
	// Workflows holds the actions extracted from each candidate URL.
	Workflows []apigraph.PrerequisiteWorkflow `json:"workflows"`

	// Actions is the full re-linked graph: the caller's existing actions
	// plus every newly extracted one, with prerequisites resolved across
	// the combined set.
	Actions []*apigraph.Action `json:"actions"`
}

// AugmentPrerequisites processes caller-supplied candidate URLs for the
// unresolved prerequisites of one action and merges the extractions into
// the existing action graph, using the same classify, extract, and link
// path as endpoint URLs. Per-URL failures are skipped, not fatal.
func (p *Pipeline) AugmentPrerequisites(ctx context.Context, mainActionID string, existing []*apigraph.Action, candidateURLs []string, progress ProgressFunc) (*AugmentResult, error) {
	var main *apigraph.Action
	for _, a := range existing {
		if a.ID == mainActionID {
			main = a
			break
		}
	}
	if main == nil {
		return nil, apigraph.Errorf(apigraph.ENOTFOUND, "action %q not found", mainActionID)
	}

	unresolved := make(map[string]string)
	for key, prereq := range main.Prerequisites {
		if !prereq.Resolved() {
			unresolved[key] = prereq.Text
		}
	}
	if len(unresolved) == 0 {
		return nil, apigraph.Errorf(apigraph.EINVALID, "action %q has no unresolved prerequisites", mainActionID)
	}

	em := newEmitter(progress)
	defer em.close()

	em.emit(apigraph.ProgressEvent{Stage: apigraph.StageProcessingStarted, Total: len(candidateURLs), Percent: 0})

	workflows := make([]apigraph.PrerequisiteWorkflow, len(candidateURLs))
	batchSize := p.batchSize()
	for start := 0; start < len(candidateURLs); start += batchSize {
		end := min(start+batchSize, len(candidateURLs))

		var wg sync.WaitGroup
		for i, u := range candidateURLs[start:end] {
			wg.Add(1)
			go func() {
				defer wg.Done()
				workflows[start+i] = p.extractPrerequisiteActions(ctx, u, unresolved)
			}()
		}
		wg.Wait()

		em.emit(apigraph.ProgressEvent{
			Stage:     apigraph.StageBatch,
			Completed: end,
			Total:     len(candidateURLs),
			Percent:   percentProcessingDone * float64(end) / float64(len(candidateURLs)),
		})
	}

	em.emit(apigraph.ProgressEvent{Stage: apigraph.StageLinkingStarted, Percent: percentProcessingDone})

	combined := make([]*apigraph.Action, 0, len(existing))
	seen := make(map[string]struct{})
	for _, a := range existing {
		combined = append(combined, a)
		seen[a.ID] = struct{}{}
	}
	for wi := range workflows {
		for _, a := range workflows[wi].Actions {
			if _, dup := seen[a.ID]; dup {
				a.ID = uuid.NewString()
			}
			seen[a.ID] = struct{}{}
			combined = append(combined, a)
		}
	}

	linked := p.Linker.Link(ctx, combined)
	byID := make(map[string]*apigraph.Action, len(linked))
	for _, a := range linked {
		byID[a.ID] = a
	}
	for wi := range workflows {
		for i, a := range workflows[wi].Actions {
			if replacement, ok := byID[a.ID]; ok {
				workflows[wi].Actions[i] = replacement
			}
		}
	}

	em.emit(apigraph.ProgressEvent{Stage: apigraph.StageLinkingComplete, Percent: 100})

	return &AugmentResult{Workflows: workflows, Actions: linked}, nil
}

// extractPrerequisiteActions runs the classify-then-extract path for one
// candidate prerequisite URL. Failures yield an empty workflow.
func (p *Pipeline) extractPrerequisiteActions(ctx context.Context, pageURL string, unresolved map[string]string) apigraph.PrerequisiteWorkflow {
	wf := apigraph.PrerequisiteWorkflow{SourceURL: pageURL}

	html, err := p.fetch(ctx, pageURL)
	if err != nil {
		p.log().Debug("prerequisite page fetch failed", "url", pageURL, "err", err)
		return wf
	}

	text := p.pageText(html)
	if !apigraph.IsAPIDocumentation(text) {
		return wf
	}

	completion, err := p.Completer.Complete(ctx, extract.BuildPrerequisiteURLPrompt(unresolved, text, pageURL))
	if err != nil {
		p.log().Debug("prerequisite extraction failed", "url", pageURL, "err", err)
		return wf
	}

	actions, err := extract.Parse(completion)
	if err != nil {
		p.log().Debug("prerequisite parse failed", "url", pageURL, "err", fmt.Sprint(err))
		return wf
	}

	wf.Actions = actions
	return wf
}
