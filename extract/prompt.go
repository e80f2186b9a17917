// Package extract builds the model prompts for action extraction and
// parses model output back into validated Action records. It tolerates
// markdown fences, broken JSON, and prompt-template echoes.
package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fwojciec/apigraph"
)

// singleTemplate is the JSON shape the model fills in for a page that
// documents one endpoint. Every placeholder carries a marker the parser
// rejects, so a verbatim echo of the template never survives parsing.
const singleTemplate = `{
  "id": "REPLACE WITH unique lowercase identifier",
  "step_name": "REPLACE WITH human readable step name",
  "action": "REPLACE WITH snake_case verb_noun identifier",
  "inputs": {
    "EXAMPLE_INPUT_NAME": {
      "type": "REPLACE WITH input type",
      "description": "REPLACE WITH input description"
    }
  },
  "prerequisites": {
    "EXAMPLE_REQUIREMENT_KEY": "REPLACE WITH user-facing requirement"
  },
  "api_config": {
    "url": "REPLACE WITH ACTUAL API url",
    "method": "REPLACE WITH HTTP method",
    "passInputsAsQuery": false,
    "auth": {},
    "baseHeaders": {},
    "rateLimit": {}
  },
  "response_schema": {}
}`

// BuildExtractionPrompt builds the prompt that converts documentation
// prose into Action JSON. When multiple is true the model is asked for
// an array with one complete, independent object per distinct endpoint.
func BuildExtractionPrompt(pageText string, multiple bool) string {
	var sb strings.Builder

	sb.WriteString("You convert API documentation into a structured JSON action descriptor.\n\n")
	if multiple {
		sb.WriteString("This page documents MULTIPLE distinct API endpoints. Respond with a JSON array containing one object per endpoint, each matching this template:\n\n")
		sb.WriteString("[\n" + singleTemplate + "\n]\n\n")
	} else {
		sb.WriteString("Respond with a single JSON object matching this template:\n\n")
		sb.WriteString(singleTemplate + "\n\n")
	}

	sb.WriteString("Rules:\n")
	sb.WriteString("1. Output raw JSON only. No markdown fences, no commentary before or after.\n")
	sb.WriteString("2. Replace every placeholder; never leave REPLACE WITH, EXAMPLE, or PLACEHOLDER text in the output.\n")
	sb.WriteString("3. The \"action\" field is a snake_case verb_noun identifier (e.g. create_user).\n")
	sb.WriteString("4. Prerequisites describe user-facing conditions only (e.g. \"User must have a registered account\"). Do not list authentication headers, rate limits, or other api_config details as prerequisites.\n")
	sb.WriteString("5. Include every documented input with its type and description.\n")
	if multiple {
		sb.WriteString("6. Produce one complete independent object per distinct endpoint, each with a distinct id. Do not merge endpoints.\n")
	}

	sb.WriteString("\nDocumentation:\n\n")
	sb.WriteString(pageText)
	return sb.String()
}

// BuildPrerequisiteURLPrompt builds the prompt used when a caller
// supplies candidate URLs for an action's unresolved prerequisites. The
// model extracts the action(s) on the page that satisfy one of the
// listed requirements.
func BuildPrerequisiteURLPrompt(prereqs map[string]string, pageText, pageURL string) string {
	keys := make([]string, 0, len(prereqs))
	for k := range prereqs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("An API action has the following unresolved prerequisites:\n\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "- %s: %s\n", k, prereqs[k])
	}
	fmt.Fprintf(&sb, "\nThe page at %s may document the API operations that satisfy these prerequisites.\n\n", pageURL)
	sb.WriteString("Extract each such operation as a JSON array of objects matching this template:\n\n")
	sb.WriteString("[\n" + singleTemplate + "\n]\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("1. Output raw JSON only. No markdown fences, no commentary.\n")
	sb.WriteString("2. Replace every placeholder; never leave REPLACE WITH, EXAMPLE, or PLACEHOLDER text in the output.\n")
	sb.WriteString("3. Only include operations relevant to the listed prerequisites.\n")
	sb.WriteString("\nDocumentation:\n\n")
	sb.WriteString(pageText)
	return sb.String()
}

// candidateSummary is the trimmed view of an Action shown to the model
// when asking it to pick a prerequisite's best match.
type candidateSummary struct {
	ID       string   `json:"id"`
	StepName string   `json:"step_name"`
	Action   string   `json:"action"`
	Inputs   []string `json:"inputs,omitempty"`
}

// BuildRelevantActionPrompt builds the prompt asking the model to pick
// the one candidate action that satisfies a prerequisite. The answer
// must be machine-parseable: {"actionId": "<id>"} or {"actionId": null}.
func BuildRelevantActionPrompt(prereqText string, candidates []*apigraph.Action) string {
	summaries := make([]candidateSummary, 0, len(candidates))
	for _, c := range candidates {
		s := candidateSummary{ID: c.ID, StepName: c.StepName, Action: c.Name}
		for name := range c.Inputs {
			s.Inputs = append(s.Inputs, name)
		}
		sort.Strings(s.Inputs)
		summaries = append(summaries, s)
	}
	encoded, _ := json.MarshalIndent(summaries, "", "  ")

	var sb strings.Builder
	sb.WriteString("A prerequisite for an API action reads:\n\n")
	fmt.Fprintf(&sb, "  %q\n\n", prereqText)
	sb.WriteString("Candidate actions:\n\n")
	sb.Write(encoded)
	sb.WriteString("\n\nWhich single candidate action satisfies the prerequisite?\n")
	sb.WriteString("Respond with raw JSON only, exactly {\"actionId\": \"<id>\"} using an id from the list, or {\"actionId\": null} if none clearly matches.\n")
	return sb.String()
}
