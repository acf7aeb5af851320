// Package audit runs complete consent and privacy policy audits: it fetches a
// site, hands the documents to the analyzers and assembles the report.
package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/theopenlane/consentaudit/internal/consent"
	"github.com/theopenlane/consentaudit/internal/domain"
	"github.com/theopenlane/consentaudit/internal/policy"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

// Input is everything the analyzers need for one site, already fetched
type Input struct {
	// URL is the audited page URL
	URL string
	// HTML is the audited page document
	HTML string
	// CookieHeader is the raw Set-Cookie header of the page response
	CookieHeader string
	// PolicyText is the stripped policy page text, empty to analyze the main page
	PolicyText string
	// BaseURL resolves the discovered policy link, defaults to URL
	BaseURL string
	// AuditedAt is the audit timestamp
	AuditedAt time.Time
	// Warnings are collected while fetching
	Warnings []string
	// Technologies are the fingerprinted products of the page
	Technologies []TechnologyDetail
	// Infrastructure are the hosting providers of the page
	Infrastructure []InfrastructureProvider
}

// Report is the complete audit result for one site
type Report struct {
	// URL is the audited page URL
	URL string `json:"url"`
	// Target describes the audited domain, nil when the URL has no registrable domain
	Target *domain.Target `json:"target,omitempty"`
	// TaxonomyVersion is the rule data version the analysis ran with
	TaxonomyVersion string `json:"taxonomy_version,omitempty"`
	// AuditedAt is the audit timestamp
	AuditedAt time.Time `json:"audited_at"`
	// Consent is the consent banner analysis
	Consent *consent.BannerAnalysis `json:"consent,omitempty"`
	// Label grades the consent score
	Label *consent.BehaviorLabel `json:"label,omitempty"`
	// Policy is the privacy policy analysis
	Policy *policy.Result `json:"policy,omitempty"`
	// Technologies are the fingerprinted products of the page
	Technologies []TechnologyDetail `json:"technologies,omitempty"`
	// Infrastructure are the hosting providers of the page
	Infrastructure []InfrastructureProvider `json:"infrastructure,omitempty"`
	// Warnings describe degraded steps of the audit
	Warnings []string `json:"warnings"`
	// SlackNotified indicates whether a Slack notification was sent
	SlackNotified bool `json:"slack_notified"`
	// Error is set when the audit of this target failed
	Error string `json:"error,omitempty"`
}

// Failed reports whether the audit of the target failed
func (r *Report) Failed() bool {
	return r.Error != ""
}

// Assemble runs both analyzers over in and combines the results with the
// target information. It performs no I/O.
func Assemble(tax *taxonomy.Taxonomy, in Input) *Report {
	if tax == nil {
		tax = taxonomy.Default()
	}

	report := &Report{
		URL:             in.URL,
		TaxonomyVersion: tax.Version(),
		AuditedAt:       in.AuditedAt.UTC(),
		Technologies:    in.Technologies,
		Infrastructure:  in.Infrastructure,
		Warnings:        append([]string{}, in.Warnings...),
	}

	if strings.TrimSpace(in.URL) != "" {
		target, err := domain.ParseTarget(in.URL)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("target details unavailable: %v", err))
		} else {
			report.Target = target
		}
	}

	baseURL := in.BaseURL
	if baseURL == "" {
		baseURL = in.URL
	}

	banner := consent.NewAnalyzer(tax).AnalyzeBanner(in.HTML, in.CookieHeader)
	label := consent.LabelFor(banner.Score)
	pol := policy.NewAnalyzer(tax).Analyze(in.HTML, in.PolicyText, baseURL)

	report.Consent = &banner
	report.Label = &label
	report.Policy = &pol

	return report
}

// failedReport is the batch slot for a target whose audit returned an error
func failedReport(rawURL string, at time.Time, err error) *Report {
	return &Report{
		URL:       rawURL,
		AuditedAt: at.UTC(),
		Warnings:  []string{},
		Error:     err.Error(),
	}
}
