package api

import (
	"net/http"

	"github.com/theopenlane/consentaudit/internal/consent"
	"github.com/theopenlane/consentaudit/internal/policy"
)

// ConsentRequest is the body of a consent banner analysis request
type ConsentRequest struct {
	// HTML is the page document to analyze
	HTML string `json:"html"`
	// CookieHeader is the raw Set-Cookie header of the page response
	CookieHeader string `json:"cookie_header,omitempty"`
}

// ConsentResult is a banner analysis with its behavior label
type ConsentResult struct {
	consent.BannerAnalysis
	Label consent.BehaviorLabel `json:"label"`
}

// ConsentResponse is the API response envelope for consent analysis
type ConsentResponse struct {
	Success bool           `json:"success"`
	Data    *ConsentResult `json:"data,omitempty"`
	Error   *Error         `json:"error,omitempty"`
}

// handleAnalyzeConsent analyzes posted HTML for consent banner behavior
func (h *Handler) handleAnalyzeConsent(w http.ResponseWriter, r *http.Request) {
	var req ConsentRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	analysis := consent.NewAnalyzer(h.currentTaxonomy()).AnalyzeBanner(req.HTML, req.CookieHeader)

	writeJSON(w, http.StatusOK, ConsentResponse{
		Success: true,
		Data: &ConsentResult{
			BannerAnalysis: analysis,
			Label:          consent.LabelFor(analysis.Score),
		},
	})
}

// PolicyRequest is the body of a privacy policy analysis request
type PolicyRequest struct {
	// HTML is the main page document used for policy link discovery
	HTML string `json:"html"`
	// PolicyText is the policy page text, empty to analyze HTML instead
	PolicyText string `json:"policy_text,omitempty"`
	// BaseURL resolves the discovered policy link
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`
}

// PolicyResponse is the API response envelope for policy analysis
type PolicyResponse struct {
	Success bool           `json:"success"`
	Data    *policy.Result `json:"data,omitempty"`
	Error   *Error         `json:"error,omitempty"`
}

// handleAnalyzePolicy analyzes posted policy text
func (h *Handler) handleAnalyzePolicy(w http.ResponseWriter, r *http.Request) {
	var req PolicyRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	result := policy.NewAnalyzer(h.currentTaxonomy()).Analyze(req.HTML, req.PolicyText, req.BaseURL)

	writeJSON(w, http.StatusOK, PolicyResponse{
		Success: true,
		Data:    &result,
	})
}
