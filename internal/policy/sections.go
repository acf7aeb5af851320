package policy

import (
	"fmt"
	"strings"

	"github.com/theopenlane/consentaudit/internal/match"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

const userRightsCount = 7

// LegalBasis scores the lawful bases named in text
func (a *Analyzer) LegalBasis(text string) SectionAnalysis {
	return a.legalBasis(match.NewText(text))
}

func (a *Analyzer) legalBasis(t *match.Text) SectionAnalysis {
	s := newSection()

	bases := match.Match(t, a.tax.Set(taxonomy.SetLegalBasis))
	for _, h := range bases.Hits {
		s.Details = append(s.Details, fmt.Sprintf("Mentions %s as legal basis", h.Label))
	}

	switch n := len(bases.Hits); {
	case n >= 3:
		s.Score = 100
	case n == 2:
		s.Score = 75
	case n == 1:
		s.Score = 50
		s.Issues = append(s.Issues, "Limited legal bases mentioned")
	default:
		s.Issues = append(s.Issues, "No clear legal basis for data processing specified")
	}

	if match.Any(t, a.tax.Set(taxonomy.SetLegalBasisCitation)) {
		s.Details = append(s.Details, "Explicitly references GDPR Article 6")
		s.Score += 10
	}

	s.Found = bases.Found

	return s.finish()
}

// DataRetention scores retention policy, period and deletion language
func (a *Analyzer) DataRetention(text string) SectionAnalysis {
	return a.dataRetention(match.NewText(text))
}

func (a *Analyzer) dataRetention(t *match.Text) SectionAnalysis {
	s := newSection()

	hasPolicy := match.Any(t, a.tax.Set(taxonomy.SetRetentionPolicy))
	if hasPolicy {
		s.Score += 40
		s.Details = append(s.Details, "Contains data retention policy")
	} else {
		s.Issues = append(s.Issues, "No clear data retention policy found")
	}

	if period, ok := match.First(t, a.tax.Set(taxonomy.SetRetentionPeriod)); ok {
		s.Score += 40
		s.Details = append(s.Details, fmt.Sprintf("Specifies retention periods (%s)", period.Snippet))
	} else {
		s.Issues = append(s.Issues, "No specific retention periods mentioned")
	}

	if match.Any(t, a.tax.Set(taxonomy.SetRetentionDeletion)) {
		s.Score += 20
		s.Details = append(s.Details, "Mentions data deletion after retention period")
	}

	s.Found = hasPolicy

	return s.finish()
}

// UserRights scores the data subject rights described in text. Each right
// contributes its rule weight.
func (a *Analyzer) UserRights(text string) SectionAnalysis {
	return a.userRights(match.NewText(text))
}

func (a *Analyzer) userRights(t *match.Text) SectionAnalysis {
	s := newSection()

	set := a.tax.Set(taxonomy.SetUserRights)
	res := match.Match(t, set)

	var found, missing []string

	for _, r := range set.Rules {
		if res.Has(r.ID) {
			found = append(found, r.Label)
			s.Score += r.Weight

			continue
		}

		missing = append(missing, r.Label)
	}

	if len(found) > 0 {
		s.Details = append(s.Details, fmt.Sprintf("Covers %d/%d user rights: %s", len(found), userRightsCount, strings.Join(found, ", ")))
	}

	switch {
	case len(missing) > 3:
		s.Issues = append(s.Issues, "Significant user rights not mentioned")
	case len(missing) > 0:
		s.Issues = append(s.Issues, fmt.Sprintf("Missing rights: %s", strings.Join(missing, ", ")))
	}

	s.Found = len(found) >= 3

	return s.finish()
}

// ThirdPartySharing scores disclosure, recipient and purpose language
func (a *Analyzer) ThirdPartySharing(text string) SectionAnalysis {
	return a.thirdPartySharing(match.NewText(text))
}

func (a *Analyzer) thirdPartySharing(t *match.Text) SectionAnalysis {
	s := newSection()

	disclosed := match.Any(t, a.tax.Set(taxonomy.SetSharingDisclosure))
	if disclosed {
		s.Score += 40
		s.Details = append(s.Details, "Discloses third-party data sharing")
	} else {
		s.Issues = append(s.Issues, "No information about third-party data sharing")
	}

	if match.Any(t, a.tax.Set(taxonomy.SetSharingRecipients)) {
		s.Score += 30
		s.Details = append(s.Details, "Names categories of third parties")
	}

	if match.Any(t, a.tax.Set(taxonomy.SetSharingPurposes)) {
		s.Score += 30
		s.Details = append(s.Details, "Explains purposes of data sharing")
	}

	s.Found = disclosed

	return s.finish()
}

// InternationalTransfers scores transfer language. A policy that never
// mentions transfers scores 50.
func (a *Analyzer) InternationalTransfers(text string) SectionAnalysis {
	return a.internationalTransfers(match.NewText(text))
}

func (a *Analyzer) internationalTransfers(t *match.Text) SectionAnalysis {
	s := newSection()
	s.Score = 50

	s.Found = match.Any(t, a.tax.Set(taxonomy.SetTransferMentions))
	if !s.Found {
		s.Details = append(s.Details, "No international transfers mentioned")
		return s.finish()
	}

	s.Details = append(s.Details, "Mentions international data transfers")

	safeguards := match.Match(t, a.tax.Set(taxonomy.SetTransferSafeguards))
	if safeguards.Found {
		s.Score = 100
		s.Details = append(s.Details, fmt.Sprintf("Uses legal safeguards (%s)", strings.Join(safeguards.Snippets, ", ")))
	} else {
		s.Score = 30
		s.Issues = append(s.Issues, "International transfers without documented safeguards (SCCs, adequacy decision)")
	}

	return s.finish()
}

// ContactInfo scores DPO, email, address and supervisory authority details
func (a *Analyzer) ContactInfo(text string) SectionAnalysis {
	return a.contactInfo(match.NewText(text))
}

func (a *Analyzer) contactInfo(t *match.Text) SectionAnalysis {
	s := newSection()

	hasDPO := match.Any(t, a.tax.Set(taxonomy.SetContactDPO))
	if hasDPO {
		s.Score += 30
		s.Details = append(s.Details, "DPO/Privacy contact mentioned")
	} else {
		s.Issues = append(s.Issues, "No Data Protection Officer contact")
	}

	email, hasEmail := match.First(t, a.tax.Set(taxonomy.SetContactEmail))
	if hasEmail {
		s.Score += 30
		s.Details = append(s.Details, fmt.Sprintf("Contact email provided (%s)", email.Snippet))
	} else {
		s.Issues = append(s.Issues, "No privacy contact email")
	}

	if match.Any(t, a.tax.Set(taxonomy.SetContactAddress)) {
		s.Score += 20
		s.Details = append(s.Details, "Physical address provided")
	}

	if match.Any(t, a.tax.Set(taxonomy.SetContactAuthority)) {
		s.Score += 20
		s.Details = append(s.Details, "Information about supervisory authority")
	} else {
		s.Issues = append(s.Issues, "No mention of supervisory authority for complaints")
	}

	s.Found = hasEmail || hasDPO

	return s.finish()
}

// CookiePolicy scores cookie section, category and management language
func (a *Analyzer) CookiePolicy(text string) SectionAnalysis {
	return a.cookiePolicy(match.NewText(text))
}

func (a *Analyzer) cookiePolicy(t *match.Text) SectionAnalysis {
	s := newSection()

	hasSection := match.Any(t, a.tax.Set(taxonomy.SetCookieSection))
	if hasSection {
		s.Score += 40
		s.Details = append(s.Details, "Contains cookie policy information")
	} else {
		s.Issues = append(s.Issues, "No cookie policy section in privacy policy")
	}

	if match.Any(t, a.tax.Set(taxonomy.SetCookieCategories)) {
		s.Score += 30
		s.Details = append(s.Details, "Explains cookie categories")
	}

	if match.Any(t, a.tax.Set(taxonomy.SetCookieManagement)) {
		s.Score += 30
		s.Details = append(s.Details, "Explains how to manage cookies")
	}

	s.Found = hasSection

	return s.finish()
}

// ChildrenPrivacy scores children's data language. A not-directed-at-children
// disclaimer outranks a children's section.
func (a *Analyzer) ChildrenPrivacy(text string) SectionAnalysis {
	return a.childrenPrivacy(match.NewText(text))
}

func (a *Analyzer) childrenPrivacy(t *match.Text) SectionAnalysis {
	s := newSection()
	s.Score = 50

	hasSection := match.Any(t, a.tax.Set(taxonomy.SetChildrenSection))
	if hasSection {
		s.Score = 80
		s.Details = append(s.Details, "Contains children privacy policy")
	}

	notDirected := match.Any(t, a.tax.Set(taxonomy.SetChildrenNotDirected))
	if notDirected {
		s.Score = 100
		s.Details = append(s.Details, "States service is not directed at children")
	}

	if !hasSection && !notDirected {
		s.Issues = append(s.Issues, "No statement about children's data")
	}

	s.Found = hasSection || notDirected

	return s.finish()
}
