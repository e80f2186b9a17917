package link

import (
	"context"
	"sort"
	"strings"

	"github.com/fwojciec/apigraph"
	"github.com/fwojciec/apigraph/extract"
)

// Linker resolves unresolved prerequisite strings across a collection of
// Actions. When a Completer is configured it is asked first; a null or
// unparseable answer falls through to heuristic scoring rather than
// failing. With no Completer, heuristic scoring is the sole path.
type Linker struct {
	Completer apigraph.Completer // optional
	Policy    ScorePolicy
}

// NewLinker creates a Linker with the default score policy.
func NewLinker(completer apigraph.Completer) *Linker {
	return &Linker{Completer: completer, Policy: DefaultScorePolicy()}
}

// Link resolves prerequisites across the collection and returns deep
// copies; caller-owned Actions are never mutated in place. The pass is
// idempotent: already-resolved references are skipped untouched, so
// running Link twice yields an identical result after the first run.
func (l *Linker) Link(ctx context.Context, actions []*apigraph.Action) []*apigraph.Action {
	linked := make([]*apigraph.Action, len(actions))
	for i, a := range actions {
		linked[i] = a.Clone()
	}

	candidates := make([]candidate, len(linked))
	for i, a := range linked {
		candidates[i] = candidate{
			id:         a.ID,
			name:       strings.ToLower(strings.ReplaceAll(a.Name, "_", " ")),
			stepName:   strings.ToLower(a.StepName),
			inputs:     serializeLower(a.Inputs),
			serialized: serializeLower(a),
		}
	}
	byID := make(map[string]*apigraph.Action, len(linked))
	for _, a := range linked {
		byID[a.ID] = a
	}

	for i, action := range linked {
		// Deterministic prerequisite order; map iteration order is not.
		keys := make([]string, 0, len(action.Prerequisites))
		for k := range action.Prerequisites {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			prereq := action.Prerequisites[key]
			if prereq.Resolved() {
				continue
			}
			text := strings.TrimSpace(prereq.Text)
			if len([]rune(text)) < l.Policy.MinPrereqLength {
				continue
			}

			targetID := l.resolve(ctx, text, i, linked, candidates)
			if targetID == "" {
				continue
			}
			target := byID[targetID]

			prereq.Ref = &apigraph.PrerequisiteRef{
				TargetActionID:   target.ID,
				Description:      text,
				TargetActionName: target.StepName,
			}
			action.Prerequisites[key] = prereq
		}
	}

	return linked
}

// resolve picks the best-matching other action for a prerequisite text,
// model first, heuristic second. Returns "" when nothing clears the bar.
func (l *Linker) resolve(ctx context.Context, text string, self int, actions []*apigraph.Action, candidates []candidate) string {
	if l.Completer != nil {
		if id := l.askModel(ctx, text, self, actions); id != "" {
			return id
		}
	}
	return l.scoreCandidates(text, self, candidates)
}

// askModel asks the completion service to pick the matching action.
// Any failure along the way degrades to "" so the heuristic takes over.
func (l *Linker) askModel(ctx context.Context, text string, self int, actions []*apigraph.Action) string {
	others := make([]*apigraph.Action, 0, len(actions)-1)
	for i, a := range actions {
		if i != self {
			others = append(others, a)
		}
	}
	if len(others) == 0 {
		return ""
	}

	prompt := extract.BuildRelevantActionPrompt(text, others)
	completion, err := l.Completer.Complete(ctx, prompt)
	if err != nil {
		return ""
	}
	id, err := extract.ParseActionChoice(completion)
	if err != nil {
		return ""
	}
	for _, a := range others {
		if a.ID == id {
			return id
		}
	}
	return ""
}

// scoreCandidates ranks candidates by heuristic score. Ties break by
// input order (first-seen candidate wins) for reproducibility, and the
// winner must clear the policy's minimum score.
func (l *Linker) scoreCandidates(text string, self int, candidates []candidate) string {
	bestID := ""
	bestScore := 0
	for i, c := range candidates {
		if i == self {
			continue
		}
		if score := l.Policy.Score(text, c); score > bestScore {
			bestScore = score
			bestID = c.id
		}
	}
	if bestScore < l.Policy.MinScore {
		return ""
	}
	return bestID
}
