package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/consentaudit/internal/audit"
	"github.com/theopenlane/consentaudit/internal/domain"
)

// AuditRequest is the body of a single site audit request
type AuditRequest struct {
	// URL is the page to audit; a missing scheme defaults to https
	URL string `json:"url" validate:"required,max=2048"`
	// NotifySlack controls whether to send a Slack notification. Defaults to true when omitted.
	NotifySlack *bool `json:"notify_slack,omitempty"`
}

// AuditResponse is the API response envelope for a single audit
type AuditResponse struct {
	Success bool          `json:"success"`
	Data    *audit.Report `json:"data,omitempty"`
	Error   *Error        `json:"error,omitempty"`
}

// BatchAuditRequest is the body of a batch audit request
type BatchAuditRequest struct {
	// URLs are the pages to audit
	URLs []string `json:"urls" validate:"required,min=1,dive,required,max=2048"`
}

// BatchAuditResponse is the API response envelope for a batch audit
type BatchAuditResponse struct {
	Success bool            `json:"success"`
	Data    []*audit.Report `json:"data,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// handleAudit fetches and audits a single site
func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	if h.auditor == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrAuditorNotConfigured.Error())
		return
	}

	var req AuditRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.auditTimeout)
	defer cancel()

	report, err := h.auditor.Audit(ctx, req.URL)
	if err != nil {
		log.Error().Err(err).Str("url", req.URL).Msg("audit failed")
		respondAuditError(w, err)

		return
	}

	shouldNotify := req.NotifySlack == nil || *req.NotifySlack
	if shouldNotify && h.auditor.CanNotify() {
		// delivery failures are logged by the auditor and leave slack_notified false
		_, _ = h.auditor.Notify(ctx, report)
	}

	writeJSON(w, http.StatusOK, AuditResponse{
		Success: true,
		Data:    report,
	})
}

// handleAuditBatch audits several sites with bounded concurrency
func (h *Handler) handleAuditBatch(w http.ResponseWriter, r *http.Request) {
	if h.auditor == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrAuditorNotConfigured.Error())
		return
	}

	var req BatchAuditRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.auditTimeout)
	defer cancel()

	reports, err := h.auditor.AuditMany(ctx, req.URLs)
	if err != nil {
		respondAuditError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BatchAuditResponse{
		Success: true,
		Data:    reports,
	})
}

// respondAuditError maps auditor errors onto status codes
func respondAuditError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyTarget),
		errors.Is(err, domain.ErrInvalidURLFormat),
		errors.Is(err, domain.ErrUnsupportedScheme),
		errors.Is(err, audit.ErrNoTargets),
		errors.Is(err, audit.ErrTooManyTargets):
		respondError(w, http.StatusBadRequest, errCodeValidation, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, errCodeTimeout, ErrAuditTimeout.Error())
	default:
		respondError(w, http.StatusBadGateway, errCodeInternal, fmt.Sprintf("%v: %v", ErrAuditFailed, err))
	}
}
