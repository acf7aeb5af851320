// Package policy scores privacy policy text across eight independent
// compliance sections and aggregates them into an overall result.
package policy

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/theopenlane/consentaudit/internal/match"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

// policyLinkPattern finds href values that point at a privacy policy
var policyLinkPattern = regexp.MustCompile(`(?i)href=["']([^"']*(?:privacy|datenschutz|confidentialite|privacidad|politique-de-confidentialite|privacy-policy|data-protection)[^"']*)["']`)

// Analyzer runs the policy section analyzers against one taxonomy snapshot.
// An Analyzer is safe for concurrent use.
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

// AnalyzePrivacyPolicy analyzes a site's policy with the builtin taxonomy
func AnalyzePrivacyPolicy(mainHTML, policyText, baseURL string) Result {
	return NewAnalyzer(nil).Analyze(mainHTML, policyText, baseURL)
}

// Analyze discovers the policy link in mainHTML and scores policyText. When
// policyText is empty the main page is analyzed in its place.
func (a *Analyzer) Analyze(mainHTML, policyText, baseURL string) Result {
	policyURL := FindPolicyURL(mainHTML, baseURL)

	source := policyText
	if source == "" {
		source = mainHTML
	}

	t := match.NewText(source)

	looksLikePolicy := match.Any(t, a.tax.Set(taxonomy.SetPolicyHeading))

	var lastUpdated string
	if hit, ok := match.First(t, a.tax.Set(taxonomy.SetLastUpdated)); ok {
		lastUpdated = hit.Snippet
	}

	sections := Sections{
		LegalBasis:             a.legalBasis(t),
		DataRetention:          a.dataRetention(t),
		UserRights:             a.userRights(t),
		ThirdPartySharing:      a.thirdPartySharing(t),
		InternationalTransfers: a.internationalTransfers(t),
		ContactInfo:            a.contactInfo(t),
		CookiePolicy:           a.cookiePolicy(t),
		ChildrenPrivacy:        a.childrenPrivacy(t),
	}

	overall := overallScore(sections)

	res := Result{
		Found:             policyURL != "" || looksLikePolicy,
		PolicyURL:         policyURL,
		LastUpdatedText:   lastUpdated,
		OverallScore:      overall,
		Sections:          sections,
		MissingElements:   missingElements(sections),
		Recommendations:   recommendations(sections, lastUpdated != ""),
		ArticleCompliance: articleCompliance(sections),
	}

	switch {
	case policyURL == "" && !looksLikePolicy:
		res.OverallStatus = OverallNotFound
	case overall >= compliantThreshold:
		res.OverallStatus = OverallCompliant
	case overall >= partialThreshold:
		res.OverallStatus = OverallPartial
	default:
		res.OverallStatus = OverallNonCompliant
	}

	return res
}

// overallScore is the mean of the section scores, rounded half up
func overallScore(s Sections) int {
	all := s.All()

	sum := 0
	for _, sec := range all {
		sum += sec.Score
	}

	n := len(all)

	return (sum + n/2) / n
}

func missingElements(s Sections) []string {
	missing := []string{}

	if !s.LegalBasis.Found {
		missing = append(missing, "Legal basis for processing")
	}

	if !s.DataRetention.Found {
		missing = append(missing, "Data retention policy")
	}

	if s.UserRights.Score < 50 {
		missing = append(missing, "Complete user rights information")
	}

	if !s.ThirdPartySharing.Found {
		missing = append(missing, "Third-party sharing disclosure")
	}

	if !s.ContactInfo.Found {
		missing = append(missing, "Privacy contact information")
	}

	return missing
}

func recommendations(s Sections, hasLastUpdated bool) []string {
	recs := []string{}

	if s.LegalBasis.Score < compliantThreshold {
		recs = append(recs, "Clearly specify legal basis for each type of data processing (GDPR Art. 6)")
	}

	if s.DataRetention.Score < compliantThreshold {
		recs = append(recs, "Add specific data retention periods for each category of data")
	}

	if s.UserRights.Score < compliantThreshold {
		recs = append(recs, "Include all GDPR user rights (access, rectification, erasure, portability, objection)")
	}

	if s.ContactInfo.Score < compliantThreshold {
		recs = append(recs, "Add DPO contact information and supervisory authority details")
	}

	if !hasLastUpdated {
		recs = append(recs, `Add a visible "last updated" date to your privacy policy`)
	}

	return recs
}

// articleCompliance maps the fixed article groups to their sections
func articleCompliance(s Sections) []ArticleStatus {
	return []ArticleStatus{
		{Article: "Art. 6 - Legal Basis", Status: statusFor(s.LegalBasis.Score)},
		{Article: "Art. 13/14 - Information", Status: statusFor(s.ContactInfo.Score)},
		{Article: "Art. 15-22 - User Rights", Status: statusFor(s.UserRights.Score)},
		{Article: "Art. 44-49 - Transfers", Status: statusFor(s.InternationalTransfers.Score)},
	}
}

// FindPolicyURL returns the first privacy policy link in doc resolved against
// baseURL. It returns empty when none is found or baseURL is not an absolute URL.
func FindPolicyURL(doc, baseURL string) string {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || !base.IsAbs() || base.Host == "" {
		return ""
	}

	for _, m := range policyLinkPattern.FindAllStringSubmatch(doc, -1) {
		href := strings.TrimSpace(m[1])
		if href == "" {
			continue
		}

		ref, err := url.Parse(href)
		if err != nil {
			continue
		}

		return base.ResolveReference(ref).String()
	}

	return ""
}
