// Package api provides the HTTP handlers of the consentaudit service.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/theopenlane/consentaudit/internal/audit"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

const (
	serviceName = "consentaudit"
	// defaultAuditTimeout bounds an audit request when none is configured
	defaultAuditTimeout = 60 * time.Second
)

// TaxonomySource supplies the active taxonomy snapshot
type TaxonomySource interface {
	Current() *taxonomy.Taxonomy
}

// Auditor runs site audits for the audit endpoints
type Auditor interface {
	Audit(ctx context.Context, rawURL string) (*audit.Report, error)
	AuditMany(ctx context.Context, urls []string) ([]*audit.Report, error)
	Notify(ctx context.Context, r *audit.Report) (bool, error)
	CanNotify() bool
}

// Handler manages API endpoints
type Handler struct {
	taxonomy     TaxonomySource
	auditor      Auditor
	maxBodySize  int64
	auditTimeout time.Duration
	validate     *validator.Validate
	now          func() time.Time
}

func newHandler(cfg RouterConfig) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	timeout := cfg.AuditTimeout
	if timeout <= 0 {
		timeout = defaultAuditTimeout
	}

	return &Handler{
		taxonomy:     cfg.Taxonomy,
		auditor:      cfg.Auditor,
		maxBodySize:  cfg.MaxBodySize,
		auditTimeout: timeout,
		validate:     v,
		now:          time.Now,
	}
}

// currentTaxonomy returns the active snapshot, or the builtin taxonomy
func (h *Handler) currentTaxonomy() *taxonomy.Taxonomy {
	if h.taxonomy != nil {
		if t := h.taxonomy.Current(); t != nil {
			return t
		}
	}

	return taxonomy.Default()
}

// decodeRequest limits, decodes and validates a request body, writing the
// error response itself. It reports whether the handler should continue.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	if err := decodeJSONBody(r, dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, errCodeTooLarge, fmt.Sprintf("%s: limit is %d bytes", ErrRequestTooLarge, tooLarge.Limit))
			return false
		}

		respondError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())

		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, errCodeValidation, validationMessage(err))
		return false
	}

	return true
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status          string `json:"status"`
	Service         string `json:"service"`
	TaxonomyVersion string `json:"taxonomy_version"`
	Timestamp       string `json:"timestamp"`
}

// handleHealth returns service health status
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:          "healthy",
		Service:         serviceName,
		TaxonomyVersion: h.currentTaxonomy().Version(),
		Timestamp:       h.now().UTC().Format(time.RFC3339),
	})
}

// RuleSetSummary describes one rule set of the active taxonomy
type RuleSetSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Rules       int    `json:"rules"`
}

// TaxonomySummary describes the active taxonomy
type TaxonomySummary struct {
	Version  string           `json:"version"`
	RuleSets []RuleSetSummary `json:"rulesets"`
}

// TaxonomyResponse is the envelope for the taxonomy endpoint
type TaxonomyResponse struct {
	Success bool             `json:"success"`
	Data    *TaxonomySummary `json:"data,omitempty"`
}

// handleTaxonomy lists the rule sets of the active taxonomy
func (h *Handler) handleTaxonomy(w http.ResponseWriter, _ *http.Request) {
	tax := h.currentTaxonomy()

	summary := &TaxonomySummary{Version: tax.Version()}
	for _, set := range tax.Sets() {
		summary.RuleSets = append(summary.RuleSets, RuleSetSummary{
			Name:        set.Name,
			Description: set.Description,
			Rules:       len(set.Rules),
		})
	}

	writeJSON(w, http.StatusOK, TaxonomyResponse{Success: true, Data: summary})
}
