// Package match applies taxonomy rule sets to text. Matching never fails:
// any input, including invalid UTF-8, produces a result.
package match

import (
	"strings"

	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

// Hit is one rule that matched, with the first snippet that matched it
type Hit struct {
	// RuleID is the id of the matching rule
	RuleID string
	// Label is the rule label
	Label string
	// Category is the rule category
	Category string
	// Description is the rule finding text
	Description string
	// Severity is the rule severity
	Severity taxonomy.Severity
	// Weight is the rule score weight
	Weight int
	// Snippet is the matched text
	Snippet string
}

// Result is the outcome of applying one rule set to one text
type Result struct {
	// Found is true when at least one rule matched
	Found bool `json:"found"`
	// Snippets holds the matched text of each hit, in rule order
	Snippets []string `json:"matched_snippets"`
	// Hits holds each matching rule, in rule order
	Hits []Hit `json:"-"`
}

// Has reports whether the rule with the given id matched
func (r Result) Has(ruleID string) bool {
	for _, h := range r.Hits {
		if h.RuleID == ruleID {
			return true
		}
	}

	return false
}

// Text is prepared input. Preparing once lets an analyzer apply many rule
// sets without normalizing the same document repeatedly.
type Text struct {
	normalized string
	folded     string
}

// NewText prepares s for matching
func NewText(s string) *Text {
	n := taxonomy.Normalize(s)

	return &Text{
		normalized: n,
		folded:     strings.ToLower(n),
	}
}

// String returns the normalized text with its original case
func (t *Text) String() string {
	return t.normalized
}

// Folded returns the normalized, lower-cased text
func (t *Text) Folded() string {
	return t.folded
}

// Match applies every rule in set to t and collects all hits
func Match(t *Text, set *taxonomy.RuleSet) Result {
	res := Result{
		Snippets: []string{},
		Hits:     []Hit{},
	}

	for i := range set.Rules {
		rule := &set.Rules[i]

		snippet, ok := t.find(rule)
		if !ok {
			continue
		}

		res.Found = true
		res.Snippets = append(res.Snippets, snippet)
		res.Hits = append(res.Hits, newHit(rule, snippet))
	}

	return res
}

// MatchString prepares s and applies set to it
func MatchString(s string, set *taxonomy.RuleSet) Result {
	return Match(NewText(s), set)
}

// First returns the first rule in set order that matches t
func First(t *Text, set *taxonomy.RuleSet) (Hit, bool) {
	for i := range set.Rules {
		rule := &set.Rules[i]

		if snippet, ok := t.find(rule); ok {
			return newHit(rule, snippet), true
		}
	}

	return Hit{}, false
}

// Any reports whether any rule in set matches t
func Any(t *Text, set *taxonomy.RuleSet) bool {
	_, ok := First(t, set)
	return ok
}

// find evaluates the predicates of rule in declaration order, literals first,
// and returns the first matching snippet
func (t *Text) find(rule *taxonomy.Rule) (string, bool) {
	haystack := t.folded
	if rule.CaseSensitive {
		haystack = t.normalized
	}

	for _, lit := range rule.FoldedLiterals() {
		if lit != "" && strings.Contains(haystack, lit) {
			return lit, true
		}
	}

	for _, re := range rule.Regexps() {
		if loc := re.FindStringIndex(t.normalized); loc != nil {
			return t.normalized[loc[0]:loc[1]], true
		}
	}

	return "", false
}

func newHit(rule *taxonomy.Rule, snippet string) Hit {
	return Hit{
		RuleID:      rule.ID,
		Label:       rule.Label,
		Category:    rule.Category,
		Description: rule.Description,
		Severity:    rule.Severity,
		Weight:      rule.Weight,
		Snippet:     snippet,
	}
}
