package consent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/theopenlane/consentaudit/internal/match"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

// ParamState is the default state of one consent-signal parameter
type ParamState string

const (
	// ParamGranted means the parameter defaults to granted
	ParamGranted ParamState = "granted"
	// ParamDenied means the parameter defaults to denied
	ParamDenied ParamState = "denied"
	// ParamMissing means the parameter is absent from the default declaration
	ParamMissing ParamState = "missing"
)

// SignalStates holds the default state of each required parameter
type SignalStates struct {
	AdStorage         ParamState `json:"ad_storage"`
	AdUserData        ParamState `json:"ad_user_data"`
	AdPersonalization ParamState `json:"ad_personalization"`
	AnalyticsStorage  ParamState `json:"analytics_storage"`
}

// SignalStage classifies how far the consent-signal protocol is configured
type SignalStage string

const (
	// SignalStageNotApplicable means no Google-family tag is present
	SignalStageNotApplicable SignalStage = "not_applicable"
	// SignalStageUnconfigured means tags are present but no declaration was found
	SignalStageUnconfigured SignalStage = "unconfigured"
	// SignalStagePartiallyConfigured means some declaration exists but falls short
	SignalStagePartiallyConfigured SignalStage = "partially_configured"
	// SignalStageCompliant means all four parameters default to denied, with an
	// update declaration and a deferral window
	SignalStageCompliant SignalStage = "compliant"
)

// SignalAnalysis is the consent-signal protocol analysis of a page
type SignalAnalysis struct {
	// Detected is true when a default or update declaration exists
	Detected bool `json:"detected"`
	// HasDefaultDeclaration is true when a default declaration call exists
	HasDefaultDeclaration bool `json:"has_default_declaration"`
	// HasUpdateDeclaration is true when any update declaration call exists
	HasUpdateDeclaration bool `json:"has_update_declaration"`
	// State holds the default state of the four required parameters
	State SignalStates `json:"state"`
	// AllRequiredPresent is true when all four parameters are declared
	AllRequiredPresent bool `json:"all_required_present"`
	// MissingParams lists the undeclared parameters
	MissingParams []string `json:"missing_params"`
	// DeferralFlagPresent is true when the default declaration sets wait_for_update
	DeferralFlagPresent bool `json:"deferral_flag_present"`
	// TagsPresent is true when a Google-family tag fingerprint was found
	TagsPresent bool `json:"tags_present"`
	// TagKinds names the tag families found
	TagKinds []string `json:"tag_kinds"`
	// Stage is the protocol configuration stage
	Stage SignalStage `json:"stage"`
	// Issues explain every score deduction
	Issues []string `json:"issues"`
	// Score is the 0-100 signal score
	Score int `json:"score"`
}

const (
	paramAdStorage         = "ad_storage"
	paramAdUserData        = "ad_user_data"
	paramAdPersonalization = "ad_personalization"
	paramAnalyticsStorage  = "analytics_storage"

	// maxDeclarationObject bounds the configuration object read after a default call
	maxDeclarationObject = 4096

	penaltyNoDefault      = 40
	penaltyMissingParam   = 10
	penaltyGrantedDefault = 8
	penaltyNoUpdate       = 5
	penaltyNoDeferral     = 3
)

// requiredParams is in report order
var requiredParams = []string{paramAdStorage, paramAdUserData, paramAdPersonalization, paramAnalyticsStorage}

var (
	defaultCallPattern = regexp.MustCompile(`(?i)(?:\bgtag\s*\(|\.push\s*\(\s*\[?)\s*['"]consent['"]\s*,\s*['"]default['"]\s*,`)
	updateCallPattern  = regexp.MustCompile(`(?i)(?:\bgtag\s*\(|\.push\s*\(\s*\[?)\s*['"]consent['"]\s*,\s*['"]update['"]`)
	waitPattern        = regexp.MustCompile(`(?i)['"]?\bwait_for_update['"]?\s*:\s*\d+`)

	paramPatterns = func() map[string]*regexp.Regexp {
		m := make(map[string]*regexp.Regexp, len(requiredParams))
		for _, p := range requiredParams {
			m[p] = regexp.MustCompile(`(?i)['"]?\b` + p + `['"]?\s*:\s*['"](granted|denied)['"]`)
		}

		return m
	}()
)

// AnalyzeSignal analyzes the consent-signal declarations of a page. Pages
// without a Google-family tag get a neutral not-applicable result.
func (a *Analyzer) AnalyzeSignal(doc string) SignalAnalysis {
	text := match.NewText(doc)

	res := SignalAnalysis{
		State: SignalStates{
			AdStorage:         ParamMissing,
			AdUserData:        ParamMissing,
			AdPersonalization: ParamMissing,
			AnalyticsStorage:  ParamMissing,
		},
		MissingParams: []string{},
		TagKinds:      []string{},
		Issues:        []string{},
		Score:         100,
		Stage:         SignalStageNotApplicable,
	}

	tags := match.Match(text, a.tax.Set(taxonomy.SetGoogleTags))
	if !tags.Found {
		return res
	}

	res.TagsPresent = true

	for _, h := range tags.Hits {
		kind := h.Label
		if kind == "" {
			kind = h.RuleID
		}

		res.TagKinds = append(res.TagKinds, kind)
	}

	src := text.String()

	config, hasDefault := lastDefaultDeclaration(src)
	res.HasDefaultDeclaration = hasDefault
	res.HasUpdateDeclaration = updateCallPattern.MatchString(src)
	res.Detected = res.HasDefaultDeclaration || res.HasUpdateDeclaration

	if hasDefault {
		res.DeferralFlagPresent = waitPattern.MatchString(config)

		for _, p := range requiredParams {
			res.State.set(p, paramState(config, p))
		}
	}

	for _, p := range requiredParams {
		if res.State.get(p) == ParamMissing {
			res.MissingParams = append(res.MissingParams, p)
		}
	}

	res.AllRequiredPresent = len(res.MissingParams) == 0

	scoreSignal(&res)

	return res
}

// scoreSignal applies the signal penalties in order and sets the stage
func scoreSignal(res *SignalAnalysis) {
	score := 100

	if !res.HasDefaultDeclaration {
		score -= penaltyNoDefault
		res.Issues = append(res.Issues, "No consent default declaration found")
	}

	for _, p := range res.MissingParams {
		score -= penaltyMissingParam
		res.Issues = append(res.Issues, fmt.Sprintf("Required consent parameter %s is not declared", p))
	}

	for _, p := range requiredParams {
		if res.State.get(p) == ParamGranted {
			score -= penaltyGrantedDefault
			res.Issues = append(res.Issues, fmt.Sprintf("%s defaults to granted instead of denied", p))
		}
	}

	if !res.HasUpdateDeclaration {
		score -= penaltyNoUpdate
		res.Issues = append(res.Issues, "No consent update declaration found")
	}

	if res.HasDefaultDeclaration && !res.DeferralFlagPresent {
		score -= penaltyNoDeferral
		res.Issues = append(res.Issues, "Consent default declaration sets no wait_for_update window")
	}

	res.Score = clamp(score)

	switch {
	case !res.Detected:
		res.Stage = SignalStageUnconfigured
	case res.AllRequiredPresent && res.allDenied() && res.HasUpdateDeclaration && res.DeferralFlagPresent:
		res.Stage = SignalStageCompliant
	default:
		res.Stage = SignalStagePartiallyConfigured
	}
}

// lastDefaultDeclaration returns the configuration object text of the last
// default declaration call. A call whose configuration is not an object
// literal still counts as a declaration with an empty configuration.
func lastDefaultDeclaration(src string) (string, bool) {
	locs := defaultCallPattern.FindAllStringIndex(src, -1)
	if len(locs) == 0 {
		return "", false
	}

	rest := strings.TrimLeft(src[locs[len(locs)-1][1]:], " \t\r\n")
	if !strings.HasPrefix(rest, "{") {
		return "", true
	}

	return balancedObject(rest), true
}

// balancedObject returns the prefix of s up to the brace closing its first
// character, skipping braces inside string literals. Unterminated objects are
// truncated at maxDeclarationObject bytes.
func balancedObject(s string) string {
	depth := 0

	var quote byte

	limit := min(len(s), maxDeclarationObject)

	for i := 0; i < limit; i++ {
		c := s[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}

			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}

	return s[:limit]
}

// paramState finds the last granted/denied value of param in config
func paramState(config, param string) ParamState {
	matches := paramPatterns[param].FindAllStringSubmatch(config, -1)
	if len(matches) == 0 {
		return ParamMissing
	}

	if ParamState(strings.ToLower(matches[len(matches)-1][1])) == ParamGranted {
		return ParamGranted
	}

	return ParamDenied
}

func (s *SignalStates) set(param string, v ParamState) {
	switch param {
	case paramAdStorage:
		s.AdStorage = v
	case paramAdUserData:
		s.AdUserData = v
	case paramAdPersonalization:
		s.AdPersonalization = v
	case paramAnalyticsStorage:
		s.AnalyticsStorage = v
	}
}

func (s SignalStates) get(param string) ParamState {
	switch param {
	case paramAdStorage:
		return s.AdStorage
	case paramAdUserData:
		return s.AdUserData
	case paramAdPersonalization:
		return s.AdPersonalization
	case paramAnalyticsStorage:
		return s.AnalyticsStorage
	default:
		return ParamMissing
	}
}

func (r *SignalAnalysis) allDenied() bool {
	for _, p := range requiredParams {
		if r.State.get(p) != ParamDenied {
			return false
		}
	}

	return true
}
