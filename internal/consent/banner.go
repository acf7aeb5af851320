// Package consent classifies a page's cookie-consent banner, the dark patterns
// around it, trackers that fire before a choice is made, and the page's
// consent-signal protocol declarations. Analysis is pure: it reads only the
// supplied HTML, cookie header and taxonomy.
package consent

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/theopenlane/consentaudit/internal/match"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

const (
	penaltyNoBanner      = 30
	penaltyNoReject      = 20
	penaltyTracker       = 10
	penaltyHighPattern   = 15
	penaltyMediumPattern = 10
	penaltyLowPattern    = 5
)

const (
	issueNoBanner = "No cookie consent banner detected"
	issueNoReject = "No clear reject button found"
)

// Analyzer runs the consent analyses against one taxonomy snapshot. An
// Analyzer is safe for concurrent use.
type Analyzer struct {
	tax *taxonomy.Taxonomy
}

// NewAnalyzer returns an Analyzer over tax, or over the builtin taxonomy when tax is nil
func NewAnalyzer(tax *taxonomy.Taxonomy) *Analyzer {
	if tax == nil {
		tax = taxonomy.Default()
	}

	return &Analyzer{tax: tax}
}

// AnalyzeConsentBanner analyzes doc with the builtin taxonomy
func AnalyzeConsentBanner(doc, cookieHeader string) BannerAnalysis {
	return NewAnalyzer(nil).AnalyzeBanner(doc, cookieHeader)
}

// AnalyzeBanner inspects doc, and the raw Set-Cookie header when one was
// captured, for a consent banner and its compliance problems
func (a *Analyzer) AnalyzeBanner(doc, cookieHeader string) BannerAnalysis {
	text := match.NewText(doc)

	res := BannerAnalysis{
		RejectLabels:      []string{},
		AcceptLabels:      []string{},
		DarkPatterns:      []DarkPattern{},
		PreConsentCookies: []PreConsentCookie{},
		Issues:            []string{},
	}

	if hit, ok := match.First(text, a.tax.Set(taxonomy.SetPlatforms)); ok {
		res.Platform = hit.Label
	}

	res.Detected = match.Any(text, a.tax.Set(taxonomy.SetBannerMarkers))

	controls := extractControls(doc)
	acceptSet := a.tax.Set(taxonomy.SetAcceptVocabulary)
	rejectSet := a.tax.Set(taxonomy.SetRejectVocabulary)

	// accept or reject controls in document order
	var classified []string

	for _, c := range controls {
		ct := match.NewText(c)

		isAccept := match.Any(ct, acceptSet)
		if isAccept {
			res.AcceptLabels = append(res.AcceptLabels, c)
		}

		isReject := match.Any(ct, rejectSet)
		if isReject {
			res.RejectLabels = append(res.RejectLabels, c)
		}

		if isAccept || isReject {
			classified = append(classified, c)
		}
	}

	res.AcceptLabels = lo.Uniq(res.AcceptLabels)
	res.RejectLabels = lo.Uniq(res.RejectLabels)
	res.HasAcceptControl = len(res.AcceptLabels) > 0
	res.HasRejectControl = len(res.RejectLabels) > 0

	res.DarkPatterns = a.detectDarkPatterns(darkPatternInput{
		raw:       doc,
		text:      text,
		controls:  classified,
		detected:  res.Detected,
		hasAccept: res.HasAcceptControl,
		hasReject: res.HasRejectControl,
	})

	res.PreConsentCookies = a.detectPreConsentTrackers(doc, text, cookieHeader)

	scoreBanner(&res)

	res.ConsentSignal = a.AnalyzeSignal(doc)

	return res
}

// scoreBanner applies the banner deductions in detection order
func scoreBanner(res *BannerAnalysis) {
	score := 100

	if !res.Detected {
		score -= penaltyNoBanner
		res.Issues = append(res.Issues, issueNoBanner)
	}

	if res.Detected && res.HasAcceptControl && !res.HasRejectControl {
		score -= penaltyNoReject
		res.Issues = append(res.Issues, issueNoReject)
	}

	for _, p := range res.DarkPatterns {
		score -= severityPenalty(p.Severity)
		res.Issues = append(res.Issues, p.Description)
	}

	for _, c := range res.PreConsentCookies {
		if !c.Violation {
			continue
		}

		score -= penaltyTracker
		res.Issues = append(res.Issues, fmt.Sprintf("%s loaded before consent", c.Name))
	}

	res.Score = clamp(score)
}

func severityPenalty(s taxonomy.Severity) int {
	switch s {
	case taxonomy.SeverityHigh:
		return penaltyHighPattern
	case taxonomy.SeverityMedium:
		return penaltyMediumPattern
	default:
		return penaltyLowPattern
	}
}

func clamp(score int) int {
	return max(0, min(100, score))
}
