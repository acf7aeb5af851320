package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/theopenlane/consentaudit/internal/audit"
	"github.com/theopenlane/consentaudit/internal/domain"
	"github.com/theopenlane/consentaudit/internal/fetch"
	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

// mockAuditor implements Auditor for testing
type mockAuditor struct {
	err        error
	delay      time.Duration
	canNotify  bool
	notified   int
	batchCalls [][]string
}

func (m *mockAuditor) Audit(ctx context.Context, rawURL string) (*audit.Report, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.err != nil {
		return nil, m.err
	}

	return audit.Assemble(nil, audit.Input{URL: rawURL, HTML: "<p>hello</p>"}), nil
}

func (m *mockAuditor) AuditMany(ctx context.Context, urls []string) ([]*audit.Report, error) {
	m.batchCalls = append(m.batchCalls, urls)

	if m.err != nil {
		return nil, m.err
	}

	reports := make([]*audit.Report, 0, len(urls))
	for _, u := range urls {
		r, _ := m.Audit(ctx, u)
		reports = append(reports, r)
	}

	return reports, nil
}

func (m *mockAuditor) Notify(_ context.Context, r *audit.Report) (bool, error) {
	m.notified++
	r.SlackNotified = true

	return true, nil
}

func (m *mockAuditor) CanNotify() bool {
	return m.canNotify
}

func newTestRouter(a Auditor) http.Handler {
	return NewRouter(RouterConfig{Auditor: a, MaxBodySize: 1 << 20, AuditTimeout: time.Second})
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Success {
		t.Error("Expected success=false")
	}

	if resp.Error == nil {
		t.Fatal("Expected error payload")
	}

	return resp
}

func TestHandleHealth(t *testing.T) {
	handler := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %s", response.Status)
	}

	if response.Service != "consentaudit" {
		t.Errorf("Expected service 'consentaudit', got %s", response.Service)
	}

	if response.TaxonomyVersion != taxonomy.Default().Version() {
		t.Errorf("Expected taxonomy version %s, got %s", taxonomy.Default().Version(), response.TaxonomyVersion)
	}

	if _, err := time.Parse(time.RFC3339, response.Timestamp); err != nil {
		t.Errorf("Expected RFC3339 timestamp, got %q", response.Timestamp)
	}
}

func TestHandleTaxonomy(t *testing.T) {
	handler := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/taxonomy", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response TaxonomyResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !response.Success || response.Data == nil {
		t.Fatal("Expected taxonomy data")
	}

	if len(response.Data.RuleSets) != len(taxonomy.Default().Sets()) {
		t.Errorf("Expected %d rule sets, got %d", len(taxonomy.Default().Sets()), len(response.Data.RuleSets))
	}

	names := map[string]int{}
	for _, rs := range response.Data.RuleSets {
		names[rs.Name] = rs.Rules
	}

	if names[taxonomy.SetRejectVocabulary] == 0 {
		t.Errorf("Expected %s to be listed with rules", taxonomy.SetRejectVocabulary)
	}
}

func TestHandleAnalyzeConsent(t *testing.T) {
	handler := newTestRouter(nil)

	w := postJSON(t, handler, "/api/analyze/consent", ConsentRequest{HTML: "<html><body>Nothing here</body></html>"})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response ConsentResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Data == nil {
		t.Fatal("Expected analysis data")
	}

	if response.Data.Detected {
		t.Error("Expected no banner detected")
	}

	if response.Data.Score != 70 {
		t.Errorf("Expected score 70, got %d", response.Data.Score)
	}

	if response.Data.Label.Message != "Consent issues detected" {
		t.Errorf("Expected warning label, got %q", response.Data.Label.Message)
	}

	if response.Data.ConsentSignal.Score != 100 {
		t.Errorf("Expected neutral consent signal score 100, got %d", response.Data.ConsentSignal.Score)
	}
}

func TestHandleAnalyzePolicy(t *testing.T) {
	handler := newTestRouter(nil)

	w := postJSON(t, handler, "/api/analyze/policy", PolicyRequest{
		HTML:       `<a href="/privacy">Privacy</a>`,
		PolicyText: "this service is not directed at children under 13",
		BaseURL:    "https://example.com",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response PolicyResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Data.PolicyURL != "https://example.com/privacy" {
		t.Errorf("Expected resolved policy url, got %q", response.Data.PolicyURL)
	}

	if response.Data.Sections.ChildrenPrivacy.Score != 100 {
		t.Errorf("Expected children privacy score 100, got %d", response.Data.Sections.ChildrenPrivacy.Score)
	}
}

func TestHandleAnalyze_InvalidRequests(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     any
		wantCode string
	}{
		{"invalid json", "/api/analyze/consent", "invalid json", errCodeInvalidRequest},
		{"unknown field", "/api/analyze/consent", `{"html":"","extra":true}`, errCodeInvalidRequest},
		{"trailing object", "/api/analyze/policy", `{"html":""}{"html":""}`, errCodeInvalidRequest},
		{"invalid base url", "/api/analyze/policy", PolicyRequest{BaseURL: "not a url"}, errCodeValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, newTestRouter(nil), tc.path, tc.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}

			resp := decodeError(t, w)
			if resp.Error.Code != tc.wantCode {
				t.Errorf("Expected code %s, got %s", tc.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestHandleAnalyze_BodyTooLarge(t *testing.T) {
	handler := NewRouter(RouterConfig{MaxBodySize: 64})

	body := ConsentRequest{HTML: strings.Repeat("a", 256)}
	w := postJSON(t, handler, "/api/analyze/consent", body)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", w.Code)
	}

	resp := decodeError(t, w)
	if resp.Error.Code != errCodeTooLarge {
		t.Errorf("Expected code %s, got %s", errCodeTooLarge, resp.Error.Code)
	}
}

func TestHandleAudit(t *testing.T) {
	a := &mockAuditor{canNotify: true}
	handler := newTestRouter(a)

	w := postJSON(t, handler, "/api/audit", AuditRequest{URL: "https://example.com"})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response AuditResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Data == nil || response.Data.URL != "https://example.com" {
		t.Fatalf("Expected report for https://example.com, got %+v", response.Data)
	}

	if !response.Data.SlackNotified || a.notified != 1 {
		t.Errorf("Expected one notification, got %d", a.notified)
	}
}

func TestHandleAudit_NotifyOptOut(t *testing.T) {
	a := &mockAuditor{canNotify: true}
	notify := false

	w := postJSON(t, newTestRouter(a), "/api/audit", AuditRequest{URL: "https://example.com", NotifySlack: &notify})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	if a.notified != 0 {
		t.Errorf("Expected no notification, got %d", a.notified)
	}
}

func TestHandleAudit_Errors(t *testing.T) {
	tests := []struct {
		name       string
		auditor    Auditor
		body       any
		wantStatus int
		wantCode   string
	}{
		{"not configured", nil, AuditRequest{URL: "https://example.com"}, http.StatusServiceUnavailable, errCodeUnavailable},
		{"missing url", &mockAuditor{}, AuditRequest{}, http.StatusBadRequest, errCodeValidation},
		{"invalid url", &mockAuditor{err: fmt.Errorf("%w: ftp", domain.ErrUnsupportedScheme)}, AuditRequest{URL: "ftp://example.com"}, http.StatusBadRequest, errCodeValidation},
		{"fetch failure", &mockAuditor{err: fetch.ErrFetchFailed}, AuditRequest{URL: "https://example.com"}, http.StatusBadGateway, errCodeInternal},
		{"timeout", &mockAuditor{delay: 5 * time.Second}, AuditRequest{URL: "https://example.com"}, http.StatusGatewayTimeout, errCodeTimeout},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewRouter(RouterConfig{Auditor: tc.auditor, AuditTimeout: 50 * time.Millisecond})

			w := postJSON(t, handler, "/api/audit", tc.body)

			if w.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, w.Code)
			}

			resp := decodeError(t, w)
			if resp.Error.Code != tc.wantCode {
				t.Errorf("Expected code %s, got %s", tc.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestHandleAuditBatch(t *testing.T) {
	a := &mockAuditor{}
	handler := newTestRouter(a)

	w := postJSON(t, handler, "/api/audit/batch", BatchAuditRequest{URLs: []string{"https://a.example.com", "https://b.example.com"}})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response BatchAuditResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(response.Data) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(response.Data))
	}

	if response.Data[0].URL != "https://a.example.com" || response.Data[1].URL != "https://b.example.com" {
		t.Error("Expected reports in request order")
	}
}

func TestHandleAuditBatch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		auditor    *mockAuditor
		body       any
		wantStatus int
	}{
		{"empty list", &mockAuditor{}, BatchAuditRequest{URLs: []string{}}, http.StatusBadRequest},
		{"blank entry", &mockAuditor{}, BatchAuditRequest{URLs: []string{"https://a.example.com", ""}}, http.StatusBadRequest},
		{"too many", &mockAuditor{err: fmt.Errorf("%w: 30 exceeds limit of 25", audit.ErrTooManyTargets)}, BatchAuditRequest{URLs: []string{"https://a.example.com"}}, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, newTestRouter(tc.auditor), "/api/audit/batch", tc.body)

			if w.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, w.Code)
			}

			resp := decodeError(t, w)
			if resp.Error.Code != errCodeValidation {
				t.Errorf("Expected code %s, got %s", errCodeValidation, resp.Error.Code)
			}
		})
	}
}
