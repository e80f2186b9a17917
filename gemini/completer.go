// Package gemini implements the completion service using Google Gemini.
package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/apigraph"
	"google.golang.org/genai"
)

// DefaultModel is used when no model selector is supplied.
const DefaultModel = "gemini-2.5-flash"

// Ensure Completer implements apigraph.Completer at compile time.
var _ apigraph.Completer = (*Completer)(nil)

// Completer implements apigraph.Completer using Google Gemini. The
// credential is bound to the client and the model selector to the
// Completer at construction; callers are oblivious to both.
type Completer struct {
	client *genai.Client
	model  string
}

// NewCompleter creates a Completer for the given model. An empty model
// selector falls back to DefaultModel.
func NewCompleter(client *genai.Client, model string) *Completer {
	if model == "" {
		model = DefaultModel
	}
	return &Completer{client: client, model: model}
}

// Complete sends the prompt and returns the raw text completion.
// Credential, quota, and transport failures propagate unchanged.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apigraph.Errorf(apigraph.EINVALID, "prompt required")
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", apigraph.Errorf(apigraph.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for extraction calls.
// Low temperature keeps the JSON output close to the template.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You convert API documentation into structured JSON exactly as instructed. Respond with raw JSON only, never markdown.",
			}},
		},
		Temperature: &temp,
	}
}
