package audit

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/theopenlane/consentaudit/internal/consent"
	"github.com/theopenlane/consentaudit/internal/slack"
)

// maxSlackListItems caps the dark patterns and missing elements listed in a message
const maxSlackListItems = 10

// NeedsAttention reports whether the consent or policy score of the report is
// below threshold
func NeedsAttention(r *Report, threshold int) bool {
	if r == nil || r.Failed() {
		return false
	}

	if r.Consent != nil && r.Consent.Score < threshold {
		return true
	}

	return r.Policy != nil && r.Policy.OverallScore < threshold
}

// BuildSlackMessage formats an audit report into a Slack Block Kit message
func BuildSlackMessage(r *Report) slack.Message {
	site := r.URL
	if r.Target != nil {
		site = r.Target.Host
	}

	blocks := []slack.Block{
		slack.Header(fmt.Sprintf("Consent Audit: %s", site)),
	}

	var fields []string

	if r.Consent != nil {
		fields = append(fields,
			fmt.Sprintf("*Consent Score:*\n%d/100", r.Consent.Score),
			fmt.Sprintf("*Consent Signal:*\n%d/100", r.Consent.ConsentSignal.Score),
		)

		if r.Consent.Platform != "" {
			fields = append(fields, fmt.Sprintf("*Platform:*\n%s", r.Consent.Platform))
		}
	}

	if r.Label != nil {
		fields = append(fields, fmt.Sprintf("*Verdict:*\n%s", r.Label.Message))
	}

	if r.Policy != nil {
		fields = append(fields, fmt.Sprintf("*Policy Score:*\n%d/100 (%s)", r.Policy.OverallScore, r.Policy.OverallStatus))
	}

	if len(fields) > 0 {
		blocks = append(blocks, slack.Fields(fields...))
	}

	if r.Consent != nil && len(r.Consent.DarkPatterns) > 0 {
		patterns := lo.Map(r.Consent.DarkPatterns, func(dp consent.DarkPattern, _ int) string {
			return fmt.Sprintf("• %s (%s)", dp.Description, dp.Severity)
		})

		blocks = append(blocks, slack.Section(fmt.Sprintf("*Dark Patterns:*\n%s", bulletList(patterns))))
	}

	if r.Policy != nil && len(r.Policy.MissingElements) > 0 {
		missing := lo.Map(r.Policy.MissingElements, func(m string, _ int) string {
			return "• " + m
		})

		blocks = append(blocks, slack.Section(fmt.Sprintf("*Missing Policy Elements:*\n%s", bulletList(missing))))
	}

	if len(r.Warnings) > 0 {
		blocks = append(blocks, slack.Divider(), slack.Section(fmt.Sprintf("_%s_", strings.Join(r.Warnings, "; "))))
	}

	return slack.Message{
		Text:   fallbackText(site, r),
		Blocks: blocks,
	}
}

func bulletList(items []string) string {
	if len(items) > maxSlackListItems {
		rest := len(items) - maxSlackListItems
		items = append(items[:maxSlackListItems:maxSlackListItems], fmt.Sprintf("...and %d more", rest))
	}

	return strings.Join(items, "\n")
}

func fallbackText(site string, r *Report) string {
	parts := []string{fmt.Sprintf("Consent Audit: %s", site)}

	if r.Consent != nil {
		parts = append(parts, fmt.Sprintf("consent %d/100", r.Consent.Score))
	}

	if r.Policy != nil {
		parts = append(parts, fmt.Sprintf("policy %d/100", r.Policy.OverallScore))
	}

	return strings.Join(parts, ", ")
}
