package cmd

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/consentaudit/config"
	"github.com/theopenlane/consentaudit/internal/audit"
	"github.com/theopenlane/consentaudit/internal/fetch"
	"github.com/theopenlane/consentaudit/internal/slack"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

// loadConfig loads the config file named by the --config flag and applies
// the logging flags
func loadConfig() (*config.Config, error) {
	cfgPath := k.String("config")

	cfg, err := config.Load(&cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg.Server.Debug = k.Bool("debug")
	cfg.Server.Pretty = k.Bool("pretty")

	return cfg, nil
}

// setupTaxonomy loads the builtin rules plus the configured rule directory
func setupTaxonomy(cfg *config.Config) (*taxonomy.Store, error) {
	store, err := taxonomy.NewStore(taxonomy.NewLoader(cfg.Taxonomy.Dir))
	if err != nil {
		return nil, fmt.Errorf("setting up taxonomy: %w", err)
	}

	return store, nil
}

// setupFetcher initializes the httpx page fetcher from config
func setupFetcher(cfg *config.Config) *fetch.HTTPXFetcher {
	return fetch.NewHTTPXFetcher(
		fetch.WithTimeout(cfg.Fetch.Timeout),
		fetch.WithMaxRedirects(cfg.Fetch.MaxRedirects),
		fetch.WithMaxBodySize(cfg.Fetch.MaxBodySize),
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
	)
}

// setupAuditor wires the fetcher, detector and notifier into an auditor
func setupAuditor(cfg *config.Config, store *taxonomy.Store) *audit.Auditor {
	opts := []audit.Option{
		audit.WithConcurrency(cfg.Audit.Concurrency),
		audit.WithMaxTargets(cfg.Audit.MaxTargets),
	}

	if detector := setupDetector(cfg); detector != nil {
		opts = append(opts, audit.WithDetector(detector))
	}

	if slackClient := setupSlack(cfg); slackClient != nil {
		opts = append(opts, audit.WithNotifier(slackClient, cfg.Audit.NotifyThreshold))
	}

	return audit.New(setupFetcher(cfg), store, opts...)
}

// setupDetector initializes technology detection from config, returning nil when disabled
func setupDetector(cfg *config.Config) *audit.TechnologyDetector {
	if !cfg.Audit.DetectTechnologies {
		log.Info().Msg("technology detection disabled, skipping")
		return nil
	}

	detector, err := audit.NewTechnologyDetector()
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize technology detection")
		return nil
	}

	return detector
}

// setupSlack initializes the Slack webhook client from config, returning nil when unconfigured
func setupSlack(cfg *config.Config) *slack.Client {
	if cfg.Slack.WebhookURL == "" {
		log.Info().Msg("slack notifications not configured, skipping")
		return nil
	}

	client, err := slack.New(
		cfg.Slack.WebhookURL,
		slack.WithHTTPClient(&http.Client{Timeout: cfg.Slack.RequestTimeout}),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize slack client")
		return nil
	}

	log.Info().Msg("slack notifications configured")

	return client
}
