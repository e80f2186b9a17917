package apigraph

import "context"

// Completer is a free-form text-completion service. Implementations bind
// the credential and model selector at construction; callers see only a
// prompt in and a completion out. Network and auth failures propagate
// unchanged -- no retry is mandated at this layer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
