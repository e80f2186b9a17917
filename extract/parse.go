package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/fwojciec/apigraph"
	"github.com/google/uuid"
)

// templateMarkers are placeholder fragments from the extraction template.
// An action whose step name, identifier, or URL still contains one of
// these was echoed back from the prompt rather than extracted.
var templateMarkers = []string{
	"REPLACE WITH",
	"REPLACE_WITH",
	"ACTUAL API",
	"ACTUAL_API",
	"EXAMPLE",
	"PLACEHOLDER",
}

var (
	fenceRe     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	arraySpanRe = regexp.MustCompile(`(?s)\[.*\]`)
	jsonSpanRe  = regexp.MustCompile(`(?s)\{.*\}`)

	adjacentObjectsRe = regexp.MustCompile(`\}\s*\{`)
	trailingIntoArrRe = regexp.MustCompile(`,\s*\]`)
	trailingIntoObjRe = regexp.MustCompile(`,\s*\}`)
)

// Parse turns raw model text into one or more Actions. The response
// shape decides the mode: array responses are filtered permissively
// (template echoes and invalid elements are dropped, missing or
// duplicate ids are regenerated), while a single-object response that
// fails validation is a terminal error since there is no sibling to fall
// back on.
func Parse(raw string) ([]*apigraph.Action, error) {
	cleaned := stripFence(raw)
	trimmed := strings.TrimSpace(cleaned)

	if strings.HasPrefix(trimmed, "[") || strings.HasSuffix(trimmed, "]") {
		return parseArray(trimmed)
	}
	return parseObject(trimmed)
}

func parseArray(text string) ([]*apigraph.Action, error) {
	// Greedy span extraction trims leading/trailing prose the model may
	// have wrapped around the JSON despite instructions.
	if span := arraySpanRe.FindString(text); span != "" {
		text = span
	}

	var actions []*apigraph.Action
	if err := json.Unmarshal([]byte(text), &actions); err != nil {
		repaired := repairArray(text)
		if err := json.Unmarshal([]byte(repaired), &actions); err != nil {
			return nil, apigraph.Errorf(apigraph.EUNPROCESSABLE, "model response is not valid JSON after repair: %v", err)
		}
	}

	kept := make([]*apigraph.Action, 0, len(actions))
	seen := make(map[string]struct{})
	for _, a := range actions {
		if a == nil || isTemplateEcho(a) || !hasRequiredFields(a) {
			continue
		}
		if _, dup := seen[a.ID]; a.ID == "" || dup {
			a.ID = uuid.NewString()
		}
		seen[a.ID] = struct{}{}
		kept = append(kept, a)
	}
	return kept, nil
}

func parseObject(text string) ([]*apigraph.Action, error) {
	if span := jsonSpanRe.FindString(text); span != "" {
		text = span
	}

	var action apigraph.Action
	if err := json.Unmarshal([]byte(text), &action); err != nil {
		repaired := repairObject(text)
		if err := json.Unmarshal([]byte(repaired), &action); err != nil {
			return nil, apigraph.Errorf(apigraph.EUNPROCESSABLE, "model response is not valid JSON after repair: %v", err)
		}
	}

	if isTemplateEcho(&action) {
		return nil, apigraph.Errorf(apigraph.EUNPROCESSABLE, "model echoed the extraction template without filling it in")
	}
	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	if err := action.Validate(); err != nil {
		return nil, err
	}
	return []*apigraph.Action{&action}, nil
}

// ParseActionChoice parses the relevant-action answer,
// {"actionId": "<id>"} or {"actionId": null}. A null or missing id
// returns the empty string; callers treat that as "no match" and fall
// through to heuristic scoring.
func ParseActionChoice(raw string) (string, error) {
	text := strings.TrimSpace(stripFence(raw))
	if span := jsonSpanRe.FindString(text); span != "" {
		text = span
	}

	var choice struct {
		ActionID *string `json:"actionId"`
	}
	if err := json.Unmarshal([]byte(text), &choice); err != nil {
		repaired := repairObject(text)
		if err := json.Unmarshal([]byte(repaired), &choice); err != nil {
			return "", apigraph.Errorf(apigraph.EUNPROCESSABLE, "unparseable action choice: %v", err)
		}
	}
	if choice.ActionID == nil {
		return "", nil
	}
	return *choice.ActionID, nil
}

// stripFence removes a single outer markdown code fence, if present.
func stripFence(raw string) string {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// repairArray applies the array repair pass: ensure outer brackets,
// insert missing commas between adjacent objects, strip trailing commas.
func repairArray(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "[") {
		text = "[" + text
	}
	if !strings.HasSuffix(text, "]") {
		text = text + "]"
	}
	text = adjacentObjectsRe.ReplaceAllString(text, "},{")
	text = trailingIntoArrRe.ReplaceAllString(text, "]")
	text = trailingIntoObjRe.ReplaceAllString(text, "}")
	return text
}

// repairObject applies the object repair pass: ensure outer braces and
// strip trailing commas.
func repairObject(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		text = "{" + text
	}
	if !strings.HasSuffix(text, "}") {
		text = text + "}"
	}
	text = trailingIntoObjRe.ReplaceAllString(text, "}")
	return text
}

// isTemplateEcho reports whether the action still carries placeholder
// markers from the extraction template.
func isTemplateEcho(a *apigraph.Action) bool {
	for _, field := range []string{a.StepName, a.Name, a.APIConfig.URL} {
		upper := strings.ToUpper(field)
		for _, marker := range templateMarkers {
			if strings.Contains(upper, marker) {
				return true
			}
		}
	}
	return false
}

// hasRequiredFields is the array-mode validation gate. Unlike
// Action.Validate it does not require an id: missing ids are repaired by
// the caller, not grounds for discarding a sibling.
func hasRequiredFields(a *apigraph.Action) bool {
	return a.StepName != "" && a.Name != "" && a.APIConfig.URL != "" && a.APIConfig.Method != ""
}
