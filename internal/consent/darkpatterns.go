package consent

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/theopenlane/consentaudit/internal/match"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

// checkboxContextWindow is how far past a checked checkbox its label text is looked for
const checkboxContextWindow = 200

// inputTagPattern matches input start tags for the pre-checked checkbox check
var inputTagPattern = regexp.MustCompile(`(?i)<input\b[^>]*>`)

const (
	descPreChecked   = "Non-essential cookie consent checkboxes are pre-checked"
	descHiddenReject = "No clear reject/decline button visible alongside accept button"
	descCookieWall   = "Possible cookie wall blocking access to content"
)

// darkPatternInput carries what the detectors need from the banner analysis
type darkPatternInput struct {
	raw       string
	text      *match.Text
	controls  []string
	detected  bool
	hasAccept bool
	hasReject bool
}

// detectDarkPatterns runs the confirm-shaming, pre-checked, hidden-reject and
// cookie-wall checks in that order
func (a *Analyzer) detectDarkPatterns(in darkPatternInput) []DarkPattern {
	patterns := []DarkPattern{}

	if p, ok := a.confirmShaming(in.controls); ok {
		patterns = append(patterns, p)
	}

	if a.preCheckedConsent(in.raw) {
		patterns = append(patterns, DarkPattern{
			Kind:        DarkPatternPreChecked,
			Description: descPreChecked,
			Severity:    taxonomy.SeverityHigh,
		})
	}

	if in.hasAccept && !in.hasReject && !match.Any(in.text, a.tax.Set(taxonomy.SetSoftRejectFallback)) {
		patterns = append(patterns, DarkPattern{
			Kind:        DarkPatternHiddenReject,
			Description: descHiddenReject,
			Severity:    taxonomy.SeverityHigh,
		})
	}

	if a.cookieWall(in.text, in.detected) {
		patterns = append(patterns, DarkPattern{
			Kind:        DarkPatternCookieWall,
			Description: descCookieWall,
			Severity:    taxonomy.SeverityMedium,
		})
	}

	return patterns
}

// confirmShaming reports the first accept or reject control whose text uses
// guilt-framed wording
func (a *Analyzer) confirmShaming(controls []string) (DarkPattern, bool) {
	set := a.tax.Set(taxonomy.SetConfirmShaming)

	for _, c := range controls {
		hit, ok := match.First(match.NewText(c), set)
		if !ok {
			continue
		}

		phrase := hit.Label
		if phrase == "" {
			phrase = hit.Snippet
		}

		return DarkPattern{
			Kind:        DarkPatternConfirmShaming,
			Description: fmt.Sprintf(`Manipulative language detected: "%s"`, phrase),
			Severity:    taxonomy.SeverityMedium,
		}, true
	}

	return DarkPattern{}, false
}

// preCheckedConsent reports whether a checked checkbox is followed, within
// checkboxContextWindow bytes, by non-essential purpose wording
func (a *Analyzer) preCheckedConsent(raw string) bool {
	set := a.tax.Set(taxonomy.SetNonEssentialTerms)

	for _, loc := range inputTagPattern.FindAllStringIndex(raw, -1) {
		tag := raw[loc[0]:loc[1]]
		if !isCheckedCheckbox(tag) {
			continue
		}

		end := loc[1] + checkboxContextWindow
		if end > len(raw) {
			end = len(raw)
		}

		if match.MatchString(raw[loc[0]:end], set).Found {
			return true
		}
	}

	return false
}

// isCheckedCheckbox parses a single input tag and reports whether it is a
// checkbox carrying the checked attribute
func isCheckedCheckbox(tag string) bool {
	z := html.NewTokenizer(strings.NewReader(tag))

	tt := z.Next()
	if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
		return false
	}

	tok := z.Token()

	return strings.EqualFold(strings.TrimSpace(attr(tok, "type")), "checkbox") && hasAttr(tok, "checked")
}

// cookieWall reports explicit cookie-wall markup, or overlay terminology on a
// page that carries a banner
func (a *Analyzer) cookieWall(text *match.Text, detected bool) bool {
	if match.Any(text, a.tax.Set(taxonomy.SetCookieWall)) {
		return true
	}

	return detected && match.Any(text, a.tax.Set(taxonomy.SetOverlay))
}
