package taxonomy

// Consent banner rule sets
const (
	SetPlatforms          = "consent.platforms"
	SetBannerMarkers      = "consent.banner_markers"
	SetAcceptVocabulary   = "consent.accept_vocabulary"
	SetRejectVocabulary   = "consent.reject_vocabulary"
	SetConfirmShaming     = "consent.confirm_shaming"
	SetNonEssentialTerms  = "consent.non_essential_terms"
	SetSoftRejectFallback = "consent.soft_reject_fallback"
	SetCookieWall         = "consent.cookie_wall"
	SetOverlay            = "consent.overlay"
	SetTrackerCookies     = "consent.tracker_cookies"
	SetTrackerCalls       = "consent.tracker_calls"
	SetGateSubject        = "consent.gate_subject"
	SetGateCondition      = "consent.gate_condition"
)

// Consent-signal protocol rule sets
const (
	SetGoogleTags = "signal.google_tags"
)

// Privacy policy rule sets
const (
	SetLegalBasis          = "policy.legal_basis"
	SetLegalBasisCitation  = "policy.legal_basis_citation"
	SetRetentionPolicy     = "policy.retention_policy"
	SetRetentionPeriod     = "policy.retention_period"
	SetRetentionDeletion   = "policy.retention_deletion"
	SetUserRights          = "policy.user_rights"
	SetSharingDisclosure   = "policy.sharing_disclosure"
	SetSharingRecipients   = "policy.sharing_recipients"
	SetSharingPurposes     = "policy.sharing_purposes"
	SetTransferMentions    = "policy.transfer_mentions"
	SetTransferSafeguards  = "policy.transfer_safeguards"
	SetContactDPO          = "policy.contact_dpo"
	SetContactEmail        = "policy.contact_email"
	SetContactAddress      = "policy.contact_address"
	SetContactAuthority    = "policy.contact_authority"
	SetCookieSection       = "policy.cookie_section"
	SetCookieCategories    = "policy.cookie_categories"
	SetCookieManagement    = "policy.cookie_management"
	SetChildrenSection     = "policy.children_section"
	SetChildrenNotDirected = "policy.children_not_directed"
	SetLastUpdated         = "policy.last_updated"
	SetPolicyHeading       = "policy.heading"
)

// RequiredRuleSets lists every rule set the analyzers read. A taxonomy missing
// any of them is rejected at load time.
var RequiredRuleSets = []string{
	SetPlatforms,
	SetBannerMarkers,
	SetAcceptVocabulary,
	SetRejectVocabulary,
	SetConfirmShaming,
	SetNonEssentialTerms,
	SetSoftRejectFallback,
	SetCookieWall,
	SetOverlay,
	SetTrackerCookies,
	SetTrackerCalls,
	SetGateSubject,
	SetGateCondition,
	SetGoogleTags,
	SetLegalBasis,
	SetLegalBasisCitation,
	SetRetentionPolicy,
	SetRetentionPeriod,
	SetRetentionDeletion,
	SetUserRights,
	SetSharingDisclosure,
	SetSharingRecipients,
	SetSharingPurposes,
	SetTransferMentions,
	SetTransferSafeguards,
	SetContactDPO,
	SetContactEmail,
	SetContactAddress,
	SetContactAuthority,
	SetCookieSection,
	SetCookieCategories,
	SetCookieManagement,
	SetChildrenSection,
	SetChildrenNotDirected,
	SetLastUpdated,
	SetPolicyHeading,
}
