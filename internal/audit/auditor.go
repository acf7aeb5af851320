package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/consentaudit/internal/fetch"
	"github.com/theopenlane/consentaudit/internal/policy"
	"github.com/theopenlane/consentaudit/internal/slack"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

const (
	// defaultConcurrency is the number of targets audited in parallel by AuditMany
	defaultConcurrency = 4
	// defaultMaxTargets caps the number of targets in one batch
	defaultMaxTargets = 25
	// defaultNotifyThreshold is the score below which a report is sent to Slack
	defaultNotifyThreshold = 50
)

// Fetcher retrieves the documents an audit analyzes
type Fetcher interface {
	// FetchPage fetches the page HTML and its Set-Cookie header
	FetchPage(ctx context.Context, rawURL string) (*fetch.Page, error)
	// FetchPolicyText fetches a policy page reduced to visible text
	FetchPolicyText(ctx context.Context, policyURL string) (string, error)
}

// TaxonomySource supplies the taxonomy snapshot for each audit
type TaxonomySource interface {
	Current() *taxonomy.Taxonomy
}

// Notifier delivers report summaries
type Notifier interface {
	Send(ctx context.Context, msg slack.Message) error
}

// Detector fingerprints page technologies and hosting providers
type Detector interface {
	Detect(ctx context.Context, page *fetch.Page) ([]TechnologyDetail, []InfrastructureProvider)
}

// Options configures an Auditor
type Options struct {
	concurrency     int
	maxTargets      int
	notifier        Notifier
	notifyThreshold int
	detector        Detector
	now             func() time.Time
}

// Option is a functional option for configuring the auditor
type Option func(*Options)

// WithConcurrency sets the number of targets audited in parallel
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithMaxTargets sets the maximum number of targets in one batch
func WithMaxTargets(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.maxTargets = n
		}
	}
}

// WithNotifier sends reports scoring below threshold through n
func WithNotifier(n Notifier, threshold int) Option {
	return func(o *Options) {
		if n == nil {
			return
		}

		o.notifier = n

		if threshold >= 0 && threshold <= 100 {
			o.notifyThreshold = threshold
		}
	}
}

// WithDetector enables technology and hosting detection
func WithDetector(d Detector) Option {
	return func(o *Options) {
		if d != nil {
			o.detector = d
		}
	}
}

// WithClock sets the source of report timestamps
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.now = now
		}
	}
}

// Auditor fetches sites and produces audit reports. It is safe for concurrent use.
type Auditor struct {
	fetcher  Fetcher
	taxonomy TaxonomySource
	options  *Options
}

// New creates an Auditor. A nil taxonomy source uses the builtin taxonomy.
func New(fetcher Fetcher, source TaxonomySource, opts ...Option) *Auditor {
	o := &Options{
		concurrency:     defaultConcurrency,
		maxTargets:      defaultMaxTargets,
		notifyThreshold: defaultNotifyThreshold,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	return &Auditor{
		fetcher:  fetcher,
		taxonomy: source,
		options:  o,
	}
}

// MaxTargets returns the configured batch size limit
func (a *Auditor) MaxTargets() int {
	return a.options.maxTargets
}

// CanNotify reports whether a notifier is configured
func (a *Auditor) CanNotify() bool {
	return a.options.notifier != nil
}

func (a *Auditor) currentTaxonomy() *taxonomy.Taxonomy {
	if a.taxonomy == nil {
		return taxonomy.Default()
	}

	if t := a.taxonomy.Current(); t != nil {
		return t
	}

	return taxonomy.Default()
}

// Audit fetches rawURL and its privacy policy and analyzes both. A policy page
// that cannot be fetched degrades to analyzing the main page and is recorded
// as a warning.
func (a *Auditor) Audit(ctx context.Context, rawURL string) (*Report, error) {
	start := a.options.now()

	page, err := a.fetcher.FetchPage(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	tax := a.currentTaxonomy()
	warnings := []string{}

	baseURL := page.FinalURL
	if baseURL == "" {
		baseURL = page.URL
	}

	var policyText string

	policyURL := policy.FindPolicyURL(page.HTML, baseURL)

	switch {
	case policyURL == "":
		warnings = append(warnings, "No privacy policy link found, analyzed the main page instead")
	default:
		text, err := a.fetcher.FetchPolicyText(ctx, policyURL)
		if err != nil {
			log.Warn().Err(err).Str("url", page.URL).Str("policy_url", policyURL).Msg("policy fetch failed, falling back to main page")
			warnings = append(warnings, fmt.Sprintf("Policy page %s could not be fetched, analyzed the main page instead", policyURL))
		} else {
			policyText = text
		}
	}

	in := Input{
		URL:          page.URL,
		HTML:         page.HTML,
		CookieHeader: page.CookieHeader,
		PolicyText:   policyText,
		BaseURL:      baseURL,
		AuditedAt:    start,
		Warnings:     warnings,
	}

	if a.options.detector != nil {
		in.Technologies, in.Infrastructure = a.options.detector.Detect(ctx, page)
	}

	report := Assemble(tax, in)

	log.Info().
		Str("url", report.URL).
		Int("consent_score", report.Consent.Score).
		Int("policy_score", report.Policy.OverallScore).
		Str("taxonomy_version", report.TaxonomyVersion).
		Dur("duration", a.options.now().Sub(start)).
		Msg("audit completed")

	return report, nil
}

// Notify sends the report summary when a score is below the configured
// threshold and records the delivery on the report. It returns whether a
// message was sent.
func (a *Auditor) Notify(ctx context.Context, r *Report) (bool, error) {
	if a.options.notifier == nil {
		return false, ErrNotifierNotConfigured
	}

	if !NeedsAttention(r, a.options.notifyThreshold) {
		return false, nil
	}

	if err := a.options.notifier.Send(ctx, BuildSlackMessage(r)); err != nil {
		log.Error().Err(err).Str("url", r.URL).Msg("audit slack notification failed")
		return false, err
	}

	r.SlackNotified = true

	return true, nil
}

// AuditMany audits every URL with bounded concurrency. Reports are returned in
// input order; a target that fails has its error recorded in its slot.
func (a *Auditor) AuditMany(ctx context.Context, urls []string) ([]*Report, error) {
	if len(urls) == 0 {
		return nil, ErrNoTargets
	}

	if len(urls) > a.options.maxTargets {
		return nil, fmt.Errorf("%w: %d exceeds limit of %d", ErrTooManyTargets, len(urls), a.options.maxTargets)
	}

	reports := make([]*Report, len(urls))
	sem := make(chan struct{}, a.options.concurrency)

	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)

		go func(idx int, target string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				reports[idx] = failedReport(target, a.options.now(), ctx.Err())
				return
			}

			defer func() { <-sem }()

			report, err := a.Audit(ctx, target)
			if err != nil {
				log.Warn().Err(err).Str("url", target).Msg("batch target audit failed")
				reports[idx] = failedReport(target, a.options.now(), err)

				return
			}

			reports[idx] = report
		}(i, u)
	}

	wg.Wait()

	return reports, nil
}
