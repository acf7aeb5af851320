package consent

import "github.com/theopenlane/consentaudit/internal/taxonomy"

// DarkPatternKind classifies a manipulative consent design
type DarkPatternKind string

const (
	// DarkPatternHiddenReject is an accept control without a comparable reject path
	DarkPatternHiddenReject DarkPatternKind = "hidden_reject"
	// DarkPatternColorManipulation is a visually suppressed reject control
	DarkPatternColorManipulation DarkPatternKind = "color_manipulation"
	// DarkPatternConfirmShaming is guilt-framed refusal wording
	DarkPatternConfirmShaming DarkPatternKind = "confirm_shaming"
	// DarkPatternPreChecked is a non-essential consent box checked by default
	DarkPatternPreChecked DarkPatternKind = "pre_checked"
	// DarkPatternCookieWall blocks content until a choice is made
	DarkPatternCookieWall DarkPatternKind = "cookie_wall"
	// DarkPatternForcedAction forces consent to continue
	DarkPatternForcedAction DarkPatternKind = "forced_action"
)

// DarkPattern is a detected manipulative design
type DarkPattern struct {
	// Kind classifies the pattern
	Kind DarkPatternKind `json:"kind"`
	// Description explains the finding
	Description string `json:"description"`
	// Severity grades the finding
	Severity taxonomy.Severity `json:"severity"`
}

// CookieCategory is the purpose class of a tracker
type CookieCategory string

const (
	// CookieCategoryAnalytics covers measurement trackers
	CookieCategoryAnalytics CookieCategory = "analytics"
	// CookieCategoryMarketing covers advertising and CRM trackers
	CookieCategoryMarketing CookieCategory = "marketing"
	// CookieCategoryNecessary covers strictly necessary cookies
	CookieCategoryNecessary CookieCategory = "necessary"
	// CookieCategoryUnknown is used when the rule carries no known category
	CookieCategoryUnknown CookieCategory = "unknown"
)

// PreConsentCookie is a tracker observed before any consent choice
type PreConsentCookie struct {
	// Name is the tracker name, e.g. Google Analytics
	Name string `json:"name"`
	// Category is the tracker purpose class
	Category CookieCategory `json:"category"`
	// DroppedBeforeConsent is true when the tracker activated before a choice
	DroppedBeforeConsent bool `json:"dropped_before_consent"`
	// Violation is true when the activation breaches consent requirements
	Violation bool `json:"violation"`
}

// BannerAnalysis is the result of analyzing a page's consent banner
type BannerAnalysis struct {
	// Detected is true when banner markup or notice text was found
	Detected bool `json:"detected"`
	// HasRejectControl is true when a control matched the reject vocabulary
	HasRejectControl bool `json:"has_reject_control"`
	// HasAcceptControl is true when a control matched the accept vocabulary
	HasAcceptControl bool `json:"has_accept_control"`
	// RejectLabels are the reject control texts
	RejectLabels []string `json:"reject_labels"`
	// AcceptLabels are the accept control texts
	AcceptLabels []string `json:"accept_labels"`
	// DarkPatterns are the manipulative designs found
	DarkPatterns []DarkPattern `json:"dark_patterns"`
	// PreConsentCookies are the trackers active before consent
	PreConsentCookies []PreConsentCookie `json:"pre_consent_cookies"`
	// Platform is the consent management platform, empty when unknown
	Platform string `json:"platform,omitempty"`
	// Score is the 0-100 banner score
	Score int `json:"score"`
	// Issues explain every score deduction, in deduction order
	Issues []string `json:"issues"`
	// ConsentSignal is the consent-signal protocol analysis
	ConsentSignal SignalAnalysis `json:"consent_signal"`
}
