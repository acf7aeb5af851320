package policy

// SectionStatus is the compliance band of a section score
type SectionStatus string

const (
	StatusCompliant SectionStatus = "compliant"
	StatusPartial   SectionStatus = "partial"
	StatusMissing   SectionStatus = "missing"
)

// OverallStatus is the compliance band of the overall policy score
type OverallStatus string

const (
	OverallCompliant    OverallStatus = "compliant"
	OverallPartial      OverallStatus = "partial"
	OverallNonCompliant OverallStatus = "non-compliant"
	OverallNotFound     OverallStatus = "not-found"
)

const (
	compliantThreshold = 70
	partialThreshold   = 40
)

// statusFor maps a score onto its section band
func statusFor(score int) SectionStatus {
	switch {
	case score >= compliantThreshold:
		return StatusCompliant
	case score >= partialThreshold:
		return StatusPartial
	default:
		return StatusMissing
	}
}

// SectionAnalysis is the result of one policy section analyzer. Every section
// has the same shape.
type SectionAnalysis struct {
	// Found is true when the section's primary evidence is present
	Found bool `json:"found"`
	// Score is the 0-100 section score
	Score int `json:"score"`
	// Status is the band of Score
	Status SectionStatus `json:"status"`
	// Details describe the evidence found
	Details []string `json:"details"`
	// Issues describe the evidence missing
	Issues []string `json:"issues"`
}

func newSection() SectionAnalysis {
	return SectionAnalysis{
		Details: []string{},
		Issues:  []string{},
	}
}

// finish clamps the score and sets the status band
func (s SectionAnalysis) finish() SectionAnalysis {
	s.Score = max(0, min(100, s.Score))
	s.Status = statusFor(s.Score)

	return s
}

// Sections holds the eight section analyses
type Sections struct {
	LegalBasis             SectionAnalysis `json:"legal_basis"`
	DataRetention          SectionAnalysis `json:"data_retention"`
	UserRights             SectionAnalysis `json:"user_rights"`
	ThirdPartySharing      SectionAnalysis `json:"third_party_sharing"`
	InternationalTransfers SectionAnalysis `json:"international_transfers"`
	ContactInfo            SectionAnalysis `json:"contact_info"`
	CookiePolicy           SectionAnalysis `json:"cookie_policy"`
	ChildrenPrivacy        SectionAnalysis `json:"children_privacy"`
}

// All returns the sections in report order
func (s Sections) All() []SectionAnalysis {
	return []SectionAnalysis{
		s.LegalBasis,
		s.DataRetention,
		s.UserRights,
		s.ThirdPartySharing,
		s.InternationalTransfers,
		s.ContactInfo,
		s.CookiePolicy,
		s.ChildrenPrivacy,
	}
}

// ArticleStatus is the compliance status of one regulation article group
type ArticleStatus struct {
	Article string        `json:"article"`
	Status  SectionStatus `json:"status"`
}

// Result is the privacy policy analysis of a site
type Result struct {
	// Found is true when a policy link was discovered or the text reads like a policy
	Found bool `json:"found"`
	// PolicyURL is the discovered policy link resolved against the base URL
	PolicyURL string `json:"policy_url,omitempty"`
	// LastUpdatedText is the first last-updated date expression in the text
	LastUpdatedText string `json:"last_updated_text,omitempty"`
	// OverallScore is the rounded mean of the section scores
	OverallScore int `json:"overall_score"`
	// OverallStatus is the band of OverallScore, or not-found
	OverallStatus OverallStatus `json:"overall_status"`
	// Sections holds the eight section analyses
	Sections Sections `json:"sections"`
	// MissingElements lists coarse policy gaps
	MissingElements []string `json:"missing_elements"`
	// Recommendations lists remediation advice
	Recommendations []string `json:"recommendations"`
	// ArticleCompliance maps regulation articles to section status
	ArticleCompliance []ArticleStatus `json:"article_compliance"`
}
