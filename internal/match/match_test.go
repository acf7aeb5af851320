package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

func buildSet(t *testing.T, rules ...taxonomy.Rule) *taxonomy.RuleSet {
	t.Helper()

	builtin, err := taxonomy.NewLoader("").LoadBuiltin()
	require.NoError(t, err)

	tax, err := taxonomy.Build(builtin, []taxonomy.File{{
		Version:  "test",
		RuleSets: []taxonomy.RuleSet{{Name: "test.set", Rules: rules}},
	}})
	require.NoError(t, err)

	return tax.Set("test.set")
}

func TestMatch_NoHitReturnsEmptyNotNil(t *testing.T) {
	set := buildSet(t, taxonomy.Rule{ID: "a", Literals: []string{"needle"}})

	res := MatchString("haystack", set)

	assert.False(t, res.Found)
	require.NotNil(t, res.Snippets)
	assert.Empty(t, res.Snippets)
	assert.NotNil(t, res.Hits)
}

func TestMatch_CaseInsensitiveLiteral(t *testing.T) {
	set := buildSet(t, taxonomy.Rule{ID: "a", Label: "reject", Literals: []string{"Reject All"}})

	res := MatchString("<button>REJECT ALL</button>", set)

	assert.True(t, res.Found)
	assert.Equal(t, []string{"reject all"}, res.Snippets)
	assert.True(t, res.Has("a"))
	assert.Equal(t, "reject", res.Hits[0].Label)
}

func TestMatch_CaseSensitiveRules(t *testing.T) {
	set := buildSet(t,
		taxonomy.Rule{ID: "lit", Literals: []string{"gtag("}, CaseSensitive: true},
		taxonomy.Rule{ID: "re", Patterns: []string{`\bDPO\b`}, CaseSensitive: true},
	)

	assert.False(t, MatchString("GTAG( dpo", set).Found)

	res := MatchString("gtag( DPO", set)
	assert.Equal(t, []string{"gtag(", "DPO"}, res.Snippets)
}

func TestMatch_PatternSnippetKeepsCase(t *testing.T) {
	set := buildSet(t, taxonomy.Rule{ID: "scc", Patterns: []string{`\bstandard contractual clauses\b`}})

	res := MatchString("We rely on Standard Contractual Clauses.", set)

	require.True(t, res.Found)
	assert.Equal(t, "Standard Contractual Clauses", res.Snippets[0])
}

func TestMatch_EvaluatesEveryRule(t *testing.T) {
	set := buildSet(t,
		taxonomy.Rule{ID: "one", Literals: []string{"alpha"}},
		taxonomy.Rule{ID: "two", Literals: []string{"missing"}},
		taxonomy.Rule{ID: "three", Patterns: []string{`gam+a`}},
	)

	res := MatchString("gamma then alpha", set)

	assert.Equal(t, []string{"alpha", "gamma"}, res.Snippets)
	assert.True(t, res.Has("one"))
	assert.False(t, res.Has("two"))
	assert.True(t, res.Has("three"))
}

func TestMatch_FirstPredicatePerRule(t *testing.T) {
	set := buildSet(t, taxonomy.Rule{ID: "a", Literals: []string{"zeta", "alpha"}})

	res := MatchString("alpha zeta", set)

	assert.Equal(t, []string{"zeta"}, res.Snippets)
}

func TestMatch_UnicodeNormalization(t *testing.T) {
	set := buildSet(t, taxonomy.Rule{ID: "a", Literals: []string{"accept all"}})

	assert.True(t, MatchString("ＡＣＣＥＰＴ ＡＬＬ", set).Found)
}

func TestMatch_MalformedInput(t *testing.T) {
	set := buildSet(t,
		taxonomy.Rule{ID: "a", Literals: []string{"cookie"}},
		taxonomy.Rule{ID: "b", Patterns: []string{`c.o`}},
	)

	inputs := []string{
		"",
		"\xff\xfe\xfd",
		"coo\xffkie",
		strings.Repeat("<div>", 10000),
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			res := MatchString(in, set)
			assert.NotNil(t, res.Snippets)
		})
	}
}

func TestFirst_RespectsOrder(t *testing.T) {
	set := buildSet(t,
		taxonomy.Rule{ID: "branded", Label: "OneTrust", Literals: []string{"onetrust"}},
		taxonomy.Rule{ID: "generic", Label: "Custom", Literals: []string{"cookie-banner"}},
	)

	hit, ok := First(NewText(`<div class="cookie-banner" id="onetrust-banner-sdk">`), set)
	require.True(t, ok)
	assert.Equal(t, "OneTrust", hit.Label)

	hit, ok = First(NewText(`<div class="cookie-banner">`), set)
	require.True(t, ok)
	assert.Equal(t, "Custom", hit.Label)

	_, ok = First(NewText("plain"), set)
	assert.False(t, ok)
	assert.False(t, Any(NewText("plain"), set))
}

func TestMatch_EmptySetNeverMatches(t *testing.T) {
	res := MatchString("anything", taxonomy.Default().Set("unknown"))

	assert.False(t, res.Found)
	assert.Empty(t, res.Snippets)
}
