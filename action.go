package apigraph

import (
	"encoding/json"
	"maps"
)

// Action is a structured description of one API operation extracted from
// a documentation page. Actions are produced by the extraction parser and
// mutated exactly once, by the prerequisite linker, which rewrites
// free-text prerequisites into references.
type Action struct {
	ID            string                  `json:"id"`
	StepName      string                  `json:"step_name"`
	Name          string                  `json:"action"` // machine identifier in verb_noun form
	Inputs        map[string]InputField   `json:"inputs,omitempty"`
	Prerequisites map[string]Prerequisite `json:"prerequisites,omitempty"`
	APIConfig     APIConfig               `json:"api_config"`

	// ResponseSchema is an open-ended JSON-Schema-like description of the
	// expected response shape. It is carried through verbatim.
	ResponseSchema map[string]any `json:"response_schema,omitempty"`
}

// InputField describes a single input to an Action.
type InputField struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// APIConfig is a declarative HTTP call descriptor.
type APIConfig struct {
	URL               string            `json:"url"`
	Method            string            `json:"method"`
	PassInputsAsQuery bool              `json:"passInputsAsQuery,omitempty"`
	Auth              map[string]any    `json:"auth,omitempty"`
	BaseHeaders       map[string]string `json:"baseHeaders,omitempty"`
	RateLimit         map[string]any    `json:"rateLimit,omitempty"`
}

// Validate returns an error if the action is missing required fields.
func (a *Action) Validate() error {
	if a.ID == "" {
		return Errorf(EINVALID, "action ID required")
	}
	if a.StepName == "" {
		return Errorf(EINVALID, "action step name required")
	}
	if a.Name == "" {
		return Errorf(EINVALID, "action identifier required")
	}
	if a.APIConfig.URL == "" {
		return Errorf(EINVALID, "action API URL required")
	}
	if a.APIConfig.Method == "" {
		return Errorf(EINVALID, "action API method required")
	}
	return nil
}

// Clone returns a deep copy of the action. The prerequisite linker
// operates on clones so caller-owned actions are never mutated in place.
func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Inputs = maps.Clone(a.Inputs)
	if a.Prerequisites != nil {
		clone.Prerequisites = make(map[string]Prerequisite, len(a.Prerequisites))
		for k, p := range a.Prerequisites {
			if p.Ref != nil {
				ref := *p.Ref
				p.Ref = &ref
			}
			clone.Prerequisites[k] = p
		}
	}
	clone.APIConfig.Auth = maps.Clone(a.APIConfig.Auth)
	clone.APIConfig.BaseHeaders = maps.Clone(a.APIConfig.BaseHeaders)
	clone.APIConfig.RateLimit = maps.Clone(a.APIConfig.RateLimit)
	if a.ResponseSchema != nil {
		clone.ResponseSchema = cloneValue(a.ResponseSchema).(map[string]any)
	}
	return &clone
}

// cloneValue deep-copies the JSON-shaped values that appear in
// ResponseSchema (maps, slices, scalars).
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// Prerequisite is a user-facing precondition for invoking an Action. It
// is a tagged variant: either unresolved free text or a resolved
// reference to another Action. The transition from text to reference is
// one-way; a resolved prerequisite is never re-resolved.
type Prerequisite struct {
	// Text is the original requirement text. It is preserved verbatim
	// after resolution as the reference's description.
	Text string

	// Ref is non-nil once the prerequisite has been resolved.
	Ref *PrerequisiteRef
}

// PrerequisiteRef is a resolved link to another Action.
type PrerequisiteRef struct {
	TargetActionID   string `json:"targetActionId"`
	Description      string `json:"description"`
	TargetActionName string `json:"targetActionName"`
}

// Resolved reports whether the prerequisite points at another Action.
func (p Prerequisite) Resolved() bool {
	return p.Ref != nil
}

// MarshalJSON encodes an unresolved prerequisite as a bare string and a
// resolved one as a reference object, matching the extraction template.
func (p Prerequisite) MarshalJSON() ([]byte, error) {
	if p.Ref != nil {
		return json.Marshal(p.Ref)
	}
	return json.Marshal(p.Text)
}

// UnmarshalJSON accepts either a bare string or a reference object.
func (p *Prerequisite) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		p.Text = text
		p.Ref = nil
		return nil
	}

	var ref PrerequisiteRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return Errorf(EINVALID, "prerequisite must be a string or a reference object")
	}
	if ref.TargetActionID == "" {
		// An object without a target is not a real reference. Keep its
		// description as unresolved text so linking can still run.
		p.Text = ref.Description
		p.Ref = nil
		return nil
	}
	p.Text = ref.Description
	p.Ref = &ref
	return nil
}
