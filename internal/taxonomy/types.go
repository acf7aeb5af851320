package taxonomy

import (
	"regexp"
	"sort"
)

// Severity grades how serious a rule hit is when it is reported as a finding
type Severity string

const (
	// SeverityLow is a minor finding
	SeverityLow Severity = "low"
	// SeverityMedium is a finding worth fixing
	SeverityMedium Severity = "medium"
	// SeverityHigh is a finding that should block a compliant verdict
	SeverityHigh Severity = "high"
)

// Rule is a single named predicate group. A rule matches when any of its
// literals or patterns matches the text.
type Rule struct {
	// ID identifies the rule within its rule set
	ID string `yaml:"id" json:"id" validate:"required"`
	// Label is the human readable name reported when the rule matches
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	// Category tags the rule, e.g. analytics or marketing for tracker rules
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	// Description is the finding text for rules that produce findings
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Severity grades the finding
	Severity Severity `yaml:"severity,omitempty" json:"severity,omitempty" validate:"omitempty,oneof=low medium high"`
	// Weight is the score contribution of the rule, when the analyzer uses one
	Weight int `yaml:"weight,omitempty" json:"weight,omitempty" validate:"gte=0,lte=100"`
	// Literals are substring predicates
	Literals []string `yaml:"literals,omitempty" json:"literals,omitempty" validate:"dive,required"`
	// Patterns are RE2 regular expression predicates
	Patterns []string `yaml:"patterns,omitempty" json:"patterns,omitempty" validate:"dive,required"`
	// CaseSensitive disables case folding for this rule
	CaseSensitive bool `yaml:"case_sensitive,omitempty" json:"case_sensitive,omitempty"`

	folded   []string
	compiled []*regexp.Regexp
}

// FoldedLiterals returns the literals normalized the same way match input is
func (r *Rule) FoldedLiterals() []string {
	return r.folded
}

// Regexps returns the compiled patterns in declaration order
func (r *Rule) Regexps() []*regexp.Regexp {
	return r.compiled
}

// RuleSet is an ordered, named collection of rules for one semantic category
type RuleSet struct {
	// Name is the unique rule set name, e.g. consent.reject_vocabulary
	Name string `yaml:"name" json:"name" validate:"required"`
	// Description documents what the rule set detects
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Rules are evaluated in order
	Rules []Rule `yaml:"rules" json:"rules" validate:"required,min=1,dive"`
}

// Rule returns the rule with the given id, or nil
func (s *RuleSet) Rule(id string) *Rule {
	for i := range s.Rules {
		if s.Rules[i].ID == id {
			return &s.Rules[i]
		}
	}

	return nil
}

// File is the on-disk shape of a rule file
type File struct {
	// Version is the taxonomy data version carried by the file
	Version string `yaml:"version" validate:"required"`
	// RuleSets are the rule sets defined by the file
	RuleSets []RuleSet `yaml:"rulesets" validate:"required,min=1,dive"`

	source string
}

// Source returns the path the file was read from
func (f File) Source() string {
	return f.source
}

// Taxonomy is an immutable, compiled collection of rule sets
type Taxonomy struct {
	version string
	sets    map[string]*RuleSet
}

// Version returns the data version of the taxonomy
func (t *Taxonomy) Version() string {
	return t.version
}

// Set returns the named rule set. An unknown name yields an empty set, which
// never matches.
func (t *Taxonomy) Set(name string) *RuleSet {
	if s, ok := t.sets[name]; ok {
		return s
	}

	return &RuleSet{Name: name}
}

// Has reports whether the taxonomy defines the named rule set
func (t *Taxonomy) Has(name string) bool {
	_, ok := t.sets[name]
	return ok
}

// Sets returns all rule sets sorted by name
func (t *Taxonomy) Sets() []*RuleSet {
	out := make([]*RuleSet, 0, len(t.sets))
	for _, s := range t.sets {
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out
}
