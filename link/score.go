// Package link resolves free-text prerequisite strings into references
// between Actions, via the language model when one is available and a
// keyword-scoring heuristic otherwise.
package link

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ScorePolicy holds the weights and thresholds of the heuristic
// prerequisite matcher. The values are empirically tuned, not principled;
// they are fields rather than constants so they can be swapped or tested
// in isolation without touching the linker.
type ScorePolicy struct {
	// MinPrereqLength is the minimum prerequisite text length (in runes)
	// worth matching at all. Shorter strings are too generic.
	MinPrereqLength int

	// MinScore is the confidence floor. The top-ranked candidate is
	// accepted only if its score clears it; otherwise the prerequisite
	// stays unresolved text.
	MinScore int

	// Name-match weights.
	ExactNameMatch     int
	SubstringNameMatch int

	// Token weights.
	InputTokenWeight int
	AnyTokenWeight   int

	// Coverage bonuses, applied when the share of prerequisite tokens
	// found anywhere in the candidate reaches the threshold.
	HighCoverage      float64
	HighCoverageBonus int
	MidCoverage       float64
	MidCoverageBonus  int

	// Affinities are fixed domain bonuses: when the prerequisite
	// mentions the trigger term and the candidate's action name contains
	// one of the related terms, the bonus applies.
	Affinities []Affinity
}

// Affinity is one domain-affinity rule.
type Affinity struct {
	Trigger string
	Related []string
	Bonus   int
}

// DefaultScorePolicy returns the standard policy.
func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{
		MinPrereqLength:    10,
		MinScore:           5,
		ExactNameMatch:     10,
		SubstringNameMatch: 5,
		InputTokenWeight:   2,
		AnyTokenWeight:     1,
		HighCoverage:       0.7,
		HighCoverageBonus:  3,
		MidCoverage:        0.5,
		MidCoverageBonus:   2,
		Affinities: []Affinity{
			{Trigger: "register", Related: []string{"register", "signup", "sign_up", "create_account", "account"}, Bonus: 3},
			{Trigger: "authenticate", Related: []string{"auth", "login", "token", "credential"}, Bonus: 3},
			{Trigger: "verify", Related: []string{"verify", "confirm", "validate"}, Bonus: 2},
			{Trigger: "permission", Related: []string{"permission", "role", "grant", "access"}, Bonus: 2},
			{Trigger: "setup", Related: []string{"setup", "configure", "install", "create"}, Bonus: 2},
		},
	}
}

// stopwords are dropped before token matching, alongside any token
// shorter than four characters.
var stopwords = map[string]struct{}{
	"must": {}, "have": {}, "need": {}, "needs": {}, "needed": {},
	"require": {}, "requires": {}, "required": {}, "should": {},
	"with": {}, "that": {}, "this": {}, "from": {},
	"your": {}, "their": {}, "before": {}, "first": {}, "user": {},
	"been": {}, "already": {}, "valid": {},
}

var tokenSplitRe = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize lowercases text, splits on non-alphanumerics, and drops
// stopwords and tokens shorter than four characters.
func Tokenize(text string) []string {
	var tokens []string
	for _, tok := range tokenSplitRe.Split(strings.ToLower(text), -1) {
		if len(tok) < 4 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// candidate is the precomputed matching view of an Action.
type candidate struct {
	id         string
	name       string // action identifier, underscores normalized to spaces
	stepName   string
	inputs     string // serialized inputs, lowercased
	serialized string // whole action serialized, lowercased
}

// Score computes the heuristic match score between a prerequisite text
// and a candidate action. Higher is better; zero means no affinity.
func (p ScorePolicy) Score(prereqText string, c candidate) int {
	prereq := strings.ToLower(strings.TrimSpace(prereqText))
	score := 0

	// Action-name match, strongest signal first.
	switch {
	case c.name != "" && (prereq == c.name || prereq == c.stepName):
		score += p.ExactNameMatch
	case c.name != "" && (strings.Contains(prereq, c.name) || strings.Contains(prereq, c.stepName) ||
		strings.Contains(c.name, prereq) || strings.Contains(c.stepName, prereq)):
		score += p.SubstringNameMatch
	}

	tokens := Tokenize(prereq)
	if len(tokens) > 0 {
		matched := 0
		for _, tok := range tokens {
			if strings.Contains(c.inputs, tok) {
				score += p.InputTokenWeight
			}
			if strings.Contains(c.serialized, tok) {
				score += p.AnyTokenWeight
				matched++
			}
		}
		coverage := float64(matched) / float64(len(tokens))
		if coverage >= p.HighCoverage {
			score += p.HighCoverageBonus
		} else if coverage >= p.MidCoverage {
			score += p.MidCoverageBonus
		}
	}

	for _, aff := range p.Affinities {
		if !strings.Contains(prereq, aff.Trigger) {
			continue
		}
		for _, rel := range aff.Related {
			if strings.Contains(c.name, rel) {
				score += aff.Bonus
				break
			}
		}
	}

	return score
}

// serializeLower renders v as lowercased JSON for substring matching.
func serializeLower(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.ToLower(string(encoded))
}
