package consent

import (
	"regexp"
	"strings"

	"github.com/theopenlane/consentaudit/internal/match"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

// scriptCookiePattern captures the value of inline document.cookie assignments
var scriptCookiePattern = regexp.MustCompile(`(?i)document\.cookie\s*=\s*["']([^"']+)`)

// detectPreConsentTrackers unions tracker cookies in the Set-Cookie header,
// tracker cookies assigned by inline script, and ungated tracker calls.
// Trackers are reported once by name, in that source order.
func (a *Analyzer) detectPreConsentTrackers(raw string, text *match.Text, cookieHeader string) []PreConsentCookie {
	var hits []match.Hit

	cookieSet := a.tax.Set(taxonomy.SetTrackerCookies)

	if cookieHeader != "" {
		hits = append(hits, match.MatchString(cookieHeader, cookieSet).Hits...)
	}

	if assigned := scriptCookieAssignments(raw); assigned != "" {
		hits = append(hits, match.MatchString(assigned, cookieSet).Hits...)
	}

	calls := match.Match(text, a.tax.Set(taxonomy.SetTrackerCalls))
	if calls.Found && !a.consentGated(text) {
		hits = append(hits, calls.Hits...)
	}

	trackers := []PreConsentCookie{}
	// one entry per tracker, several cookies of one tracker are penalized once
	seen := make(map[string]struct{}, len(hits))

	for _, h := range hits {
		name := h.Label
		if name == "" {
			name = h.RuleID
		}

		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}

		trackers = append(trackers, PreConsentCookie{
			Name:                 name,
			Category:             cookieCategory(h.Category),
			DroppedBeforeConsent: true,
			Violation:            true,
		})
	}

	return trackers
}

// consentGated is the document-wide consent-gate heuristic: consent wording
// plus a conditional or granted-state token anywhere in the page. It does not
// tie the gate to any particular tracker call.
func (a *Analyzer) consentGated(text *match.Text) bool {
	return match.Any(text, a.tax.Set(taxonomy.SetGateSubject)) &&
		match.Any(text, a.tax.Set(taxonomy.SetGateCondition))
}

// scriptCookieAssignments joins the values of all inline cookie assignments
func scriptCookieAssignments(raw string) string {
	matches := scriptCookiePattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return ""
	}

	values := make([]string, 0, len(matches))
	for _, m := range matches {
		values = append(values, m[1])
	}

	return strings.Join(values, "\n")
}

// cookieCategory maps a rule category onto a CookieCategory
func cookieCategory(c string) CookieCategory {
	switch CookieCategory(strings.ToLower(c)) {
	case CookieCategoryAnalytics:
		return CookieCategoryAnalytics
	case CookieCategoryMarketing:
		return CookieCategoryMarketing
	case CookieCategoryNecessary:
		return CookieCategoryNecessary
	default:
		return CookieCategoryUnknown
	}
}
