package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/theopenlane/consentaudit/config"
	"github.com/theopenlane/consentaudit/internal/api"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

// serveCmd is the cobra command that starts the consentaudit API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the consentaudit api server",
	Run: func(cmd *cobra.Command, _ []string) {
		err := serve(cmd.Context())
		cobra.CheckErr(err)
	},
}

// init registers the serve command and its flags on the root command
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.PersistentFlags().String("config", config.DefaultConfigFilePath, "config file location")
}

// serve initializes dependencies and starts the consentaudit API server
func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := setupTaxonomy(cfg)
	if err != nil {
		return err
	}

	if watcher := setupTaxonomyWatcher(cfg, store); watcher != nil {
		defer func() { _ = watcher.Stop() }()
	}

	auditor := setupAuditor(cfg, store)

	handler := api.NewRouter(api.RouterConfig{
		Taxonomy:     store,
		Auditor:      auditor,
		MaxBodySize:  cfg.Server.MaxBodySize,
		AuditTimeout: cfg.Audit.Timeout,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGracePeriod)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("listen", cfg.Server.Listen).Str("taxonomy_version", store.Current().Version()).Msg("starting consentaudit service")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}

// setupTaxonomyWatcher starts hot reload of the rule directory when enabled,
// returning nil when it is not
func setupTaxonomyWatcher(cfg *config.Config, store *taxonomy.Store) *taxonomy.Watcher {
	if !cfg.Taxonomy.Watch || cfg.Taxonomy.Dir == "" {
		return nil
	}

	if info, err := os.Stat(cfg.Taxonomy.Dir); err != nil || !info.IsDir() {
		log.Warn().Str("dir", cfg.Taxonomy.Dir).Msg("taxonomy directory not found, hot reload disabled")
		return nil
	}

	watcher, err := taxonomy.NewWatcher(store, cfg.Taxonomy.Dir, taxonomy.WithDebounce(cfg.Taxonomy.Debounce))
	if err != nil {
		log.Warn().Err(err).Msg("failed to create taxonomy watcher")
		return nil
	}

	if err := watcher.Start(); err != nil {
		log.Warn().Err(err).Msg("failed to start taxonomy watcher")
		_ = watcher.Stop()

		return nil
	}

	log.Info().Str("dir", cfg.Taxonomy.Dir).Msg("taxonomy hot reload enabled")

	return watcher
}
