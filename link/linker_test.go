package link_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/apigraph"
	"github.com/fwojciec/apigraph/link"
	"github.com/fwojciec/apigraph/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerAction() *apigraph.Action {
	return &apigraph.Action{
		ID:       "register_account",
		StepName: "Register Account",
		Name:     "register_account",
		Inputs: map[string]apigraph.InputField{
			"email":    {Type: "string", Description: "Account email address"},
			"password": {Type: "string", Description: "Account password"},
		},
		APIConfig: apigraph.APIConfig{URL: "https://api.example.com/register", Method: "POST"},
	}
}

func createOrderAction() *apigraph.Action {
	return &apigraph.Action{
		ID:       "create_order",
		StepName: "Create Order",
		Name:     "create_order",
		Prerequisites: map[string]apigraph.Prerequisite{
			"account": {Text: "User must register account first"},
		},
		APIConfig: apigraph.APIConfig{URL: "https://api.example.com/orders", Method: "POST"},
	}
}

func TestLinker_Link_HeuristicResolution(t *testing.T) {
	t.Parallel()

	l := link.NewLinker(nil)
	linked := l.Link(context.Background(), []*apigraph.Action{registerAction(), createOrderAction()})

	require.Len(t, linked, 2)
	prereq := linked[1].Prerequisites["account"]
	require.True(t, prereq.Resolved())
	assert.Equal(t, "register_account", prereq.Ref.TargetActionID)
	assert.Equal(t, "Register Account", prereq.Ref.TargetActionName)
	assert.Equal(t, "User must register account first", prereq.Ref.Description)
}

func TestLinker_Link_EqualScoresResolveToFirstCandidate(t *testing.T) {
	t.Parallel()

	// Two candidates identical in everything the scorer sees except id,
	// as happens when the same endpoint is extracted from two pages.
	twin := func(id string) *apigraph.Action {
		return &apigraph.Action{
			ID:        id,
			StepName:  "Verify Email",
			Name:      "verify_email",
			APIConfig: apigraph.APIConfig{URL: "https://api.example.com/verify", Method: "POST"},
		}
	}
	dependent := func() *apigraph.Action {
		return &apigraph.Action{
			ID:       "create_order",
			StepName: "Create Order",
			Name:     "create_order",
			Prerequisites: map[string]apigraph.Prerequisite{
				"verified": {Text: "User must verify email before continuing"},
			},
			APIConfig: apigraph.APIConfig{URL: "https://api.example.com/orders", Method: "POST"},
		}
	}

	l := link.NewLinker(nil)

	linked := l.Link(context.Background(), []*apigraph.Action{dependent(), twin("verify_email_a"), twin("verify_email_b")})
	prereq := linked[0].Prerequisites["verified"]
	require.True(t, prereq.Resolved())
	assert.Equal(t, "verify_email_a", prereq.Ref.TargetActionID)

	// Reversing the candidates flips the winner: ties follow input
	// order, nothing else.
	linked = l.Link(context.Background(), []*apigraph.Action{dependent(), twin("verify_email_b"), twin("verify_email_a")})
	prereq = linked[0].Prerequisites["verified"]
	require.True(t, prereq.Resolved())
	assert.Equal(t, "verify_email_b", prereq.Ref.TargetActionID)
}

func TestLinker_Link_ModelResolution(t *testing.T) {
	t.Parallel()

	completer := &mock.Completer{
		CompleteFn: func(_ context.Context, prompt string) (string, error) {
			assert.Contains(t, prompt, "User must register account first")
			return `{"actionId": "register_account"}`, nil
		},
	}

	l := link.NewLinker(completer)
	linked := l.Link(context.Background(), []*apigraph.Action{registerAction(), createOrderAction()})

	prereq := linked[1].Prerequisites["account"]
	require.True(t, prereq.Resolved())
	assert.Equal(t, "register_account", prereq.Ref.TargetActionID)
}

func TestLinker_Link_ModelNullFallsBackToHeuristic(t *testing.T) {
	t.Parallel()

	completer := &mock.Completer{
		CompleteFn: func(_ context.Context, _ string) (string, error) {
			return `{"actionId": null}`, nil
		},
	}

	l := link.NewLinker(completer)
	linked := l.Link(context.Background(), []*apigraph.Action{registerAction(), createOrderAction()})

	prereq := linked[1].Prerequisites["account"]
	require.True(t, prereq.Resolved())
	assert.Equal(t, "register_account", prereq.Ref.TargetActionID)
}

func TestLinker_Link_ModelErrorFallsBackToHeuristic(t *testing.T) {
	t.Parallel()

	completer := &mock.Completer{
		CompleteFn: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}

	l := link.NewLinker(completer)
	linked := l.Link(context.Background(), []*apigraph.Action{registerAction(), createOrderAction()})

	assert.True(t, linked[1].Prerequisites["account"].Resolved())
}

func TestLinker_Link_ModelHallucinatedIDIgnored(t *testing.T) {
	t.Parallel()

	completer := &mock.Completer{
		CompleteFn: func(_ context.Context, _ string) (string, error) {
			return `{"actionId": "does_not_exist"}`, nil
		},
	}

	l := link.NewLinker(completer)
	linked := l.Link(context.Background(), []*apigraph.Action{registerAction(), createOrderAction()})

	// The fabricated id is rejected; the heuristic still resolves.
	prereq := linked[1].Prerequisites["account"]
	require.True(t, prereq.Resolved())
	assert.Equal(t, "register_account", prereq.Ref.TargetActionID)
}

func TestLinker_Link_NoMatchStaysUnresolved(t *testing.T) {
	t.Parallel()

	unrelated := &apigraph.Action{
		ID:        "delete_webhook",
		StepName:  "Delete Webhook",
		Name:      "delete_webhook",
		APIConfig: apigraph.APIConfig{URL: "https://api.example.com/webhooks", Method: "DELETE"},
	}
	dependent := &apigraph.Action{
		ID:       "export_report",
		StepName: "Export Report",
		Name:     "export_report",
		Prerequisites: map[string]apigraph.Prerequisite{
			"billing": {Text: "Billing profile configured in dashboard"},
		},
		APIConfig: apigraph.APIConfig{URL: "https://api.example.com/reports", Method: "POST"},
	}

	l := link.NewLinker(nil)
	linked := l.Link(context.Background(), []*apigraph.Action{unrelated, dependent})

	prereq := linked[1].Prerequisites["billing"]
	assert.False(t, prereq.Resolved())
	assert.Equal(t, "Billing profile configured in dashboard", prereq.Text)
}

func TestLinker_Link_ShortPrerequisiteSkipped(t *testing.T) {
	t.Parallel()

	dependent := createOrderAction()
	dependent.Prerequisites["short"] = apigraph.Prerequisite{Text: "register"}

	l := link.NewLinker(nil)
	linked := l.Link(context.Background(), []*apigraph.Action{registerAction(), dependent})

	assert.False(t, linked[1].Prerequisites["short"].Resolved())
	assert.True(t, linked[1].Prerequisites["account"].Resolved())
}

func TestLinker_Link_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	register := registerAction()
	order := createOrderAction()

	l := link.NewLinker(nil)
	linked := l.Link(context.Background(), []*apigraph.Action{register, order})

	assert.True(t, linked[1].Prerequisites["account"].Resolved())
	assert.False(t, order.Prerequisites["account"].Resolved(), "caller's action mutated")
}

func TestLinker_Link_Idempotent(t *testing.T) {
	t.Parallel()

	calls := 0
	completer := &mock.Completer{
		CompleteFn: func(_ context.Context, _ string) (string, error) {
			calls++
			return `{"actionId": "register_account"}`, nil
		},
	}

	l := link.NewLinker(completer)
	once := l.Link(context.Background(), []*apigraph.Action{registerAction(), createOrderAction()})
	twice := l.Link(context.Background(), once)

	assert.Equal(t, 1, calls, "resolved prerequisites must not be re-resolved")
	assert.Equal(t, once, twice)
}

func TestLinker_Link_NeverResolvesToSelf(t *testing.T) {
	t.Parallel()

	selfRef := registerAction()
	selfRef.Prerequisites = map[string]apigraph.Prerequisite{
		"account": {Text: "User must register account first"},
	}

	l := link.NewLinker(nil)
	linked := l.Link(context.Background(), []*apigraph.Action{selfRef})

	assert.False(t, linked[0].Prerequisites["account"].Resolved())
}
