package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theopenlane/consentaudit/config"
	"github.com/theopenlane/consentaudit/internal/audit"
	"github.com/theopenlane/consentaudit/internal/fetch"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

// auditCmd audits a single site and prints the report
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "audit a site's consent banner and privacy policy",
	Long: `audit fetches a site with --url, or analyzes a saved page with --html-file,
and prints the report as JSON.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAudit(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().String("config", config.DefaultConfigFilePath, "config file location")
	auditCmd.Flags().String("url", "", "url of the page to fetch and audit")
	auditCmd.Flags().String("html-file", "", "saved page html to audit instead of fetching")
	auditCmd.Flags().String("cookie-header", "", "raw Set-Cookie header observed with --html-file")
	auditCmd.Flags().String("policy-file", "", "saved privacy policy page, html or text")
	auditCmd.Flags().String("base-url", "", "url the saved page was served from")
	auditCmd.Flags().Bool("notify", false, "send the report to slack when a score is below the threshold")
}

// runAudit runs the audit command against the bound flags
func runAudit(ctx context.Context, out io.Writer) error {
	targetURL := k.String("url")
	htmlFile := k.String("html-file")

	switch {
	case targetURL == "" && htmlFile == "":
		return ErrNoAuditInput
	case targetURL != "" && htmlFile != "":
		return ErrConflictingAuditInput
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := setupTaxonomy(cfg)
	if err != nil {
		return err
	}

	var report *audit.Report

	if targetURL != "" {
		auditor := setupAuditor(cfg, store)

		auditCtx, cancel := context.WithTimeout(ctx, cfg.Audit.Timeout)
		defer cancel()

		report, err = auditor.Audit(auditCtx, targetURL)
		if err != nil {
			return fmt.Errorf("auditing %s: %w", targetURL, err)
		}

		if k.Bool("notify") && auditor.CanNotify() {
			if _, err := auditor.Notify(auditCtx, report); err != nil {
				return fmt.Errorf("sending notification: %w", err)
			}
		}
	} else {
		report, err = auditFiles(store.Current(), htmlFile, k.String("policy-file"), k.String("cookie-header"), k.String("base-url"))
		if err != nil {
			return err
		}
	}

	return writeReport(out, report)
}

// auditFiles analyzes saved documents without any network access
func auditFiles(tax *taxonomy.Taxonomy, htmlFile, policyFile, cookieHeader, baseURL string) (*audit.Report, error) {
	doc, err := os.ReadFile(htmlFile)
	if err != nil {
		return nil, fmt.Errorf("reading html file: %w", err)
	}

	in := audit.Input{
		URL:          baseURL,
		HTML:         string(doc),
		CookieHeader: cookieHeader,
		BaseURL:      baseURL,
		AuditedAt:    time.Now(),
	}

	if policyFile != "" {
		text, err := os.ReadFile(policyFile)
		if err != nil {
			return nil, fmt.Errorf("reading policy file: %w", err)
		}

		in.PolicyText = string(text)

		if isHTMLFile(policyFile) {
			in.PolicyText = fetch.StripHTML(in.PolicyText)
		}
	}

	return audit.Assemble(tax, in), nil
}

func isHTMLFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	default:
		return false
	}
}

func writeReport(out io.Writer, report *audit.Report) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(report)
}
